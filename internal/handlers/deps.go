package handlers

import (
	"context"

	"library/internal/models"
	"library/internal/services"
	"library/internal/store"
)

type LendingService interface {
	Issue(ctx context.Context, titleID, accountID string) (models.Copy, error)
	Return(ctx context.Context, copyID, accountID string) (services.ReturnResult, error)
	Sell(ctx context.Context, titleID, accountID string) (services.SaleResult, error)
	SellBorrowed(ctx context.Context, copyID, accountID string) (services.SaleResult, error)
	ForceReturn(ctx context.Context, actorID, copyID string) (models.Copy, error)
	AmountDue(ctx context.Context, accountID string) (services.DueSummary, error)
}

type LedgerService interface {
	TopUp(ctx context.Context, actorID, accountID string, amount int64) (int64, error)
}

type CatalogService interface {
	AddTitle(ctx context.Context, actorID string, req services.NewTitleRequest) (models.Title, error)
	UpdatePricing(ctx context.Context, actorID, titleID string, price, costPerDay int64) error
	AddCopies(ctx context.Context, actorID, titleID string, n int) ([]string, error)
	RemoveCopies(ctx context.Context, actorID, titleID string, n int) (int64, error)
	DeleteTitle(ctx context.Context, actorID, titleID string) error
	Search(ctx context.Context, filter store.TitleFilter) ([]store.TitleListing, error)
	GetTitle(ctx context.Context, titleID string) (services.TitleDetail, error)
	CopyHistory(ctx context.Context, copyID string) ([]store.LoanHistoryRow, error)
	CreateCategory(ctx context.Context, actorID, name string) (models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type AccountService interface {
	Register(ctx context.Context, req services.RegisterRequest) (models.Account, error)
	CreateStaff(ctx context.Context, actorID string, req services.RegisterRequest) (models.Account, error)
	Authenticate(ctx context.Context, username, password string) (models.Account, error)
	Get(ctx context.Context, accountID string) (models.Account, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.Account, error)
	DeleteAccount(ctx context.Context, actorID, accountID string) error
}

type ReviewService interface {
	AddComment(ctx context.Context, accountID, titleID, content string) (models.Comment, error)
	ListComments(ctx context.Context, titleID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, actorID, commentID string) error
	Rate(ctx context.Context, accountID, titleID string, score int) (store.RatingSummary, error)
}

type ReportService interface {
	MonthlySales(ctx context.Context, year, month int) (store.SalesSummary, error)
	Purchases(ctx context.Context, accountID string) (models.Account, []models.PurchaseRecord, error)
	Loans(ctx context.Context, accountID string) (models.Account, []store.AccountLoanRow, error)
}

type AuditStore interface {
	List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}
