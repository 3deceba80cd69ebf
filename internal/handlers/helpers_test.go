package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"library/internal/auth"
	"library/internal/config"
	"library/internal/models"
	"library/internal/services"
	"library/internal/store"
	"library/internal/websocket"
)

const testSecret = "secret"

type stubLending struct {
	issueFn        func(ctx context.Context, titleID, accountID string) (models.Copy, error)
	returnFn       func(ctx context.Context, copyID, accountID string) (services.ReturnResult, error)
	sellFn         func(ctx context.Context, titleID, accountID string) (services.SaleResult, error)
	sellBorrowedFn func(ctx context.Context, copyID, accountID string) (services.SaleResult, error)
	forceReturnFn  func(ctx context.Context, actorID, copyID string) (models.Copy, error)
	amountDueFn    func(ctx context.Context, accountID string) (services.DueSummary, error)
}

func (s stubLending) Issue(ctx context.Context, titleID, accountID string) (models.Copy, error) {
	if s.issueFn == nil {
		return models.Copy{}, nil
	}
	return s.issueFn(ctx, titleID, accountID)
}

func (s stubLending) Return(ctx context.Context, copyID, accountID string) (services.ReturnResult, error) {
	if s.returnFn == nil {
		return services.ReturnResult{}, nil
	}
	return s.returnFn(ctx, copyID, accountID)
}

func (s stubLending) Sell(ctx context.Context, titleID, accountID string) (services.SaleResult, error) {
	if s.sellFn == nil {
		return services.SaleResult{}, nil
	}
	return s.sellFn(ctx, titleID, accountID)
}

func (s stubLending) SellBorrowed(ctx context.Context, copyID, accountID string) (services.SaleResult, error) {
	if s.sellBorrowedFn == nil {
		return services.SaleResult{}, nil
	}
	return s.sellBorrowedFn(ctx, copyID, accountID)
}

func (s stubLending) ForceReturn(ctx context.Context, actorID, copyID string) (models.Copy, error) {
	if s.forceReturnFn == nil {
		return models.Copy{}, nil
	}
	return s.forceReturnFn(ctx, actorID, copyID)
}

func (s stubLending) AmountDue(ctx context.Context, accountID string) (services.DueSummary, error) {
	if s.amountDueFn == nil {
		return services.DueSummary{}, nil
	}
	return s.amountDueFn(ctx, accountID)
}

type stubLedger struct {
	topUpFn func(ctx context.Context, actorID, accountID string, amount int64) (int64, error)
}

func (s stubLedger) TopUp(ctx context.Context, actorID, accountID string, amount int64) (int64, error) {
	if s.topUpFn == nil {
		return 0, nil
	}
	return s.topUpFn(ctx, actorID, accountID, amount)
}

type stubCatalog struct {
	addTitleFn       func(ctx context.Context, actorID string, req services.NewTitleRequest) (models.Title, error)
	updatePricingFn  func(ctx context.Context, actorID, titleID string, price, costPerDay int64) error
	removeCopiesFn   func(ctx context.Context, actorID, titleID string, n int) (int64, error)
	deleteTitleFn    func(ctx context.Context, actorID, titleID string) error
	searchFn         func(ctx context.Context, filter store.TitleFilter) ([]store.TitleListing, error)
	getTitleFn       func(ctx context.Context, titleID string) (services.TitleDetail, error)
	createCategoryFn func(ctx context.Context, actorID, name string) (models.Category, error)
}

func (s stubCatalog) AddTitle(ctx context.Context, actorID string, req services.NewTitleRequest) (models.Title, error) {
	if s.addTitleFn == nil {
		return models.Title{}, nil
	}
	return s.addTitleFn(ctx, actorID, req)
}

func (s stubCatalog) UpdatePricing(ctx context.Context, actorID, titleID string, price, costPerDay int64) error {
	if s.updatePricingFn == nil {
		return nil
	}
	return s.updatePricingFn(ctx, actorID, titleID, price, costPerDay)
}

func (s stubCatalog) AddCopies(context.Context, string, string, int) ([]string, error) {
	return nil, nil
}

func (s stubCatalog) RemoveCopies(ctx context.Context, actorID, titleID string, n int) (int64, error) {
	if s.removeCopiesFn == nil {
		return 0, nil
	}
	return s.removeCopiesFn(ctx, actorID, titleID, n)
}

func (s stubCatalog) DeleteTitle(ctx context.Context, actorID, titleID string) error {
	if s.deleteTitleFn == nil {
		return nil
	}
	return s.deleteTitleFn(ctx, actorID, titleID)
}

func (s stubCatalog) Search(ctx context.Context, filter store.TitleFilter) ([]store.TitleListing, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, filter)
}

func (s stubCatalog) GetTitle(ctx context.Context, titleID string) (services.TitleDetail, error) {
	if s.getTitleFn == nil {
		return services.TitleDetail{}, nil
	}
	return s.getTitleFn(ctx, titleID)
}

func (s stubCatalog) CopyHistory(context.Context, string) ([]store.LoanHistoryRow, error) {
	return nil, nil
}

func (s stubCatalog) CreateCategory(ctx context.Context, actorID, name string) (models.Category, error) {
	if s.createCategoryFn == nil {
		return models.Category{}, nil
	}
	return s.createCategoryFn(ctx, actorID, name)
}

func (s stubCatalog) ListCategories(context.Context) ([]models.Category, error) {
	return nil, nil
}

type stubAccounts struct {
	registerFn     func(ctx context.Context, req services.RegisterRequest) (models.Account, error)
	createStaffFn  func(ctx context.Context, actorID string, req services.RegisterRequest) (models.Account, error)
	authenticateFn func(ctx context.Context, username, password string) (models.Account, error)
	getFn          func(ctx context.Context, accountID string) (models.Account, error)
	listByRoleFn   func(ctx context.Context, role models.Role) ([]models.Account, error)
	deleteFn       func(ctx context.Context, actorID, accountID string) error
}

func (s stubAccounts) Register(ctx context.Context, req services.RegisterRequest) (models.Account, error) {
	if s.registerFn == nil {
		return models.Account{}, nil
	}
	return s.registerFn(ctx, req)
}

func (s stubAccounts) CreateStaff(ctx context.Context, actorID string, req services.RegisterRequest) (models.Account, error) {
	if s.createStaffFn == nil {
		return models.Account{}, nil
	}
	return s.createStaffFn(ctx, actorID, req)
}

func (s stubAccounts) Authenticate(ctx context.Context, username, password string) (models.Account, error) {
	if s.authenticateFn == nil {
		return models.Account{}, nil
	}
	return s.authenticateFn(ctx, username, password)
}

func (s stubAccounts) Get(ctx context.Context, accountID string) (models.Account, error) {
	if s.getFn == nil {
		return models.Account{ID: accountID}, nil
	}
	return s.getFn(ctx, accountID)
}

func (s stubAccounts) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	if s.listByRoleFn == nil {
		return nil, nil
	}
	return s.listByRoleFn(ctx, role)
}

func (s stubAccounts) DeleteAccount(ctx context.Context, actorID, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, actorID, accountID)
}

type stubReviews struct {
	addCommentFn func(ctx context.Context, accountID, titleID, content string) (models.Comment, error)
	rateFn       func(ctx context.Context, accountID, titleID string, score int) (store.RatingSummary, error)
}

func (s stubReviews) AddComment(ctx context.Context, accountID, titleID, content string) (models.Comment, error) {
	if s.addCommentFn == nil {
		return models.Comment{}, nil
	}
	return s.addCommentFn(ctx, accountID, titleID, content)
}

func (s stubReviews) ListComments(context.Context, string) ([]models.Comment, error) {
	return nil, nil
}

func (s stubReviews) DeleteComment(context.Context, string, string) error {
	return nil
}

func (s stubReviews) Rate(ctx context.Context, accountID, titleID string, score int) (store.RatingSummary, error) {
	if s.rateFn == nil {
		return store.RatingSummary{}, nil
	}
	return s.rateFn(ctx, accountID, titleID, score)
}

type stubReports struct {
	monthlySalesFn func(ctx context.Context, year, month int) (store.SalesSummary, error)
	purchasesFn    func(ctx context.Context, accountID string) (models.Account, []models.PurchaseRecord, error)
	loansFn        func(ctx context.Context, accountID string) (models.Account, []store.AccountLoanRow, error)
}

func (s stubReports) MonthlySales(ctx context.Context, year, month int) (store.SalesSummary, error) {
	if s.monthlySalesFn == nil {
		return store.SalesSummary{}, nil
	}
	return s.monthlySalesFn(ctx, year, month)
}

func (s stubReports) Purchases(ctx context.Context, accountID string) (models.Account, []models.PurchaseRecord, error) {
	if s.purchasesFn == nil {
		return models.Account{}, nil, nil
	}
	return s.purchasesFn(ctx, accountID)
}

func (s stubReports) Loans(ctx context.Context, accountID string) (models.Account, []store.AccountLoanRow, error) {
	if s.loansFn == nil {
		return models.Account{}, nil, nil
	}
	return s.loansFn(ctx, accountID)
}

type stubAudit struct {
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

func (s stubAudit) List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

// testServices starts with no-op stubs; tests replace the ones they need.
type testServices struct {
	lending  stubLending
	ledger   stubLedger
	catalog  stubCatalog
	accounts stubAccounts
	reviews  stubReviews
	reports  stubReports
	audit    stubAudit
}

func newTestHandler(s testServices) http.Handler {
	cfg := config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       time.Minute,
		AllowedOrigins: []string{"*"},
	}
	h := New(cfg, s.lending, s.ledger, s.catalog, s.accounts, s.reviews, s.reports, s.audit, websocket.NewHub())
	h.now = func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }
	return h.Routes()
}

func tokenFor(t *testing.T, accountID string, role models.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, accountID, role, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
