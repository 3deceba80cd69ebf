package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"library/internal/models"
	"library/internal/store"
	"library/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type stubHub struct {
	mu    sync.Mutex
	calls []websocket.CreditUpdate
}

func (s *stubHub) BroadcastCredits(_ string, update websocket.CreditUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, update)
}

type auditCall struct {
	actorID, action, entityType, entityID string
}

type stubAuditStore struct {
	calls []auditCall
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s *stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	s.calls = append(s.calls, auditCall{actorID: actorID, action: action, entityType: entityType, entityID: entityID})
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s *stubAuditStore) actions() []string {
	out := make([]string, 0, len(s.calls))
	for _, call := range s.calls {
		out = append(out, call.action)
	}
	return out
}

// memDB is an in-memory stand-in for the Postgres schema. Each store view
// below reads and writes the same maps.
type memDB struct {
	accounts   map[string]models.Account
	titles     map[string]models.Title
	categories map[string]models.Category
	copies     map[string]models.Copy
	loans      []models.LoanRecord
	purchases  []models.PurchaseRecord
	ratings    map[string]models.Rating
	comments   map[string]models.Comment
	copyPicks  int
}

func newMemDB() *memDB {
	return &memDB{
		accounts:   map[string]models.Account{},
		titles:     map[string]models.Title{},
		categories: map[string]models.Category{},
		copies:     map[string]models.Copy{},
		ratings:    map[string]models.Rating{},
		comments:   map[string]models.Comment{},
	}
}

var uniqueViolation = &pq.Error{Code: "23505"}

type memAccounts struct{ db *memDB }

func (m memAccounts) Create(_ context.Context, _ store.Execer, account models.Account) error {
	for _, existing := range m.db.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return uniqueViolation
		}
	}
	m.db.accounts[account.ID] = account
	return nil
}

func (m memAccounts) GetByID(_ context.Context, accountID string) (models.Account, error) {
	account, ok := m.db.accounts[accountID]
	if !ok {
		return models.Account{}, sql.ErrNoRows
	}
	return account, nil
}

func (m memAccounts) GetByUsername(_ context.Context, username string) (models.Account, error) {
	for _, account := range m.db.accounts {
		if account.Username == username {
			return account, nil
		}
	}
	return models.Account{}, sql.ErrNoRows
}

func (m memAccounts) GetForUpdate(ctx context.Context, _ store.Getter, accountID string) (models.Account, error) {
	return m.GetByID(ctx, accountID)
}

func (m memAccounts) UpdateCredits(_ context.Context, _ store.Execer, accountID string, credits int64) error {
	account := m.db.accounts[accountID]
	account.Credits = credits
	m.db.accounts[accountID] = account
	return nil
}

func (m memAccounts) ListByRole(_ context.Context, role models.Role) ([]models.Account, error) {
	rows := []models.Account{}
	for _, account := range m.db.accounts {
		if account.Role == role {
			rows = append(rows, account)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Username < rows[j].Username })
	return rows, nil
}

func (m memAccounts) Delete(_ context.Context, _ store.Execer, accountID string) (int64, error) {
	if _, ok := m.db.accounts[accountID]; !ok {
		return 0, nil
	}
	delete(m.db.accounts, accountID)
	return 1, nil
}

type memTitles struct{ db *memDB }

func (m memTitles) Create(_ context.Context, _ store.Execer, title models.Title) error {
	for _, existing := range m.db.titles {
		if existing.ISBN == title.ISBN {
			return uniqueViolation
		}
	}
	m.db.titles[title.ID] = title
	return nil
}

func (m memTitles) GetByID(_ context.Context, titleID string) (models.Title, error) {
	title, ok := m.db.titles[titleID]
	if !ok {
		return models.Title{}, sql.ErrNoRows
	}
	return title, nil
}

func (m memTitles) Get(ctx context.Context, _ store.Getter, titleID string) (models.Title, error) {
	return m.GetByID(ctx, titleID)
}

func (m memTitles) UpdatePricing(_ context.Context, _ store.Execer, titleID string, price, costPerDay int64) (int64, error) {
	title, ok := m.db.titles[titleID]
	if !ok {
		return 0, nil
	}
	title.Price = price
	title.CostPerDay = costPerDay
	m.db.titles[titleID] = title
	return 1, nil
}

func (m memTitles) Delete(_ context.Context, _ store.Execer, titleID string) (int64, error) {
	if _, ok := m.db.titles[titleID]; !ok {
		return 0, nil
	}
	delete(m.db.titles, titleID)
	return 1, nil
}

func (m memTitles) Search(_ context.Context, filter store.TitleFilter) ([]store.TitleListing, error) {
	rows := []store.TitleListing{}
	for _, title := range m.db.titles {
		available := (memCopies{m.db}).countAvailable(title.ID)
		if filter.AvailableOnly && available == 0 {
			continue
		}
		rows = append(rows, store.TitleListing{Title: title, AvailableCopies: available})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

type memCategories struct{ db *memDB }

func (m memCategories) Create(_ context.Context, _ store.Execer, category models.Category) error {
	for _, existing := range m.db.categories {
		if existing.Name == category.Name {
			return uniqueViolation
		}
	}
	m.db.categories[category.ID] = category
	return nil
}

func (m memCategories) List(context.Context) ([]models.Category, error) {
	rows := []models.Category{}
	for _, category := range m.db.categories {
		rows = append(rows, category)
	}
	return rows, nil
}

type memCopies struct{ db *memDB }

func (m memCopies) sortedIDs() []string {
	ids := make([]string, 0, len(m.db.copies))
	for id := range m.db.copies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m memCopies) countAvailable(titleID string) int64 {
	var n int64
	for _, c := range m.db.copies {
		if c.TitleID == titleID && c.Status == models.CopyAvailable {
			n++
		}
	}
	return n
}

func (m memCopies) CreateMany(_ context.Context, _ store.Execer, titleID string, ids []string) error {
	for _, id := range ids {
		m.db.copies[id] = models.Copy{ID: id, TitleID: titleID, Status: models.CopyAvailable}
	}
	return nil
}

func (m memCopies) GetByID(_ context.Context, copyID string) (models.Copy, error) {
	c, ok := m.db.copies[copyID]
	if !ok {
		return models.Copy{}, sql.ErrNoRows
	}
	return c, nil
}

func (m memCopies) GetForUpdate(ctx context.Context, _ store.Getter, copyID string) (models.Copy, error) {
	return m.GetByID(ctx, copyID)
}

func (m memCopies) PickAvailableForUpdate(_ context.Context, _ store.Getter, titleID string) (models.Copy, error) {
	m.db.copyPicks++
	for _, id := range m.sortedIDs() {
		c := m.db.copies[id]
		if c.TitleID == titleID && c.Status == models.CopyAvailable {
			return c, nil
		}
	}
	return models.Copy{}, sql.ErrNoRows
}

func (m memCopies) HasBorrowed(_ context.Context, _ store.Getter, titleID, accountID string) (bool, error) {
	for _, c := range m.db.copies {
		if c.TitleID == titleID && c.Status == models.CopyBorrowed && c.HolderID != nil && *c.HolderID == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (m memCopies) Update(_ context.Context, _ store.Execer, c models.Copy) error {
	m.db.copies[c.ID] = c
	return nil
}

func (m memCopies) CountAvailable(_ context.Context, titleID string) (int64, error) {
	return m.countAvailable(titleID), nil
}

func (m memCopies) ListByTitle(_ context.Context, titleID string) ([]models.Copy, error) {
	rows := []models.Copy{}
	for _, id := range m.sortedIDs() {
		c := m.db.copies[id]
		if c.TitleID == titleID && c.Status != models.CopyRemoved {
			rows = append(rows, c)
		}
	}
	return rows, nil
}

func (m memCopies) ListBorrowedByHolder(_ context.Context, accountID string) ([]store.BorrowedCopy, error) {
	rows := []store.BorrowedCopy{}
	for _, id := range m.sortedIDs() {
		c := m.db.copies[id]
		if c.Status != models.CopyBorrowed || c.HolderID == nil || *c.HolderID != accountID {
			continue
		}
		title := m.db.titles[c.TitleID]
		rows = append(rows, store.BorrowedCopy{
			CopyID:     c.ID,
			TitleID:    title.ID,
			TitleName:  title.Name,
			Author:     title.Author,
			CostPerDay: title.CostPerDay,
			BorrowedAt: *c.BorrowedAt,
			DueAt:      *c.DueAt,
		})
	}
	return rows, nil
}

func (m memCopies) ReleaseAllHeldBy(_ context.Context, _ store.Execer, accountID string) (int64, error) {
	var n int64
	for id, c := range m.db.copies {
		if c.Status == models.CopyBorrowed && c.HolderID != nil && *c.HolderID == accountID {
			m.db.copies[id] = models.Copy{ID: c.ID, TitleID: c.TitleID, Status: models.CopyAvailable}
			n++
		}
	}
	return n, nil
}

func (m memCopies) RemoveAvailable(_ context.Context, _ store.Execer, titleID string, n int) (int64, error) {
	var removed int64
	for _, id := range m.sortedIDs() {
		if removed == int64(n) {
			break
		}
		c := m.db.copies[id]
		if c.TitleID == titleID && c.Status == models.CopyAvailable {
			c.Status = models.CopyRemoved
			m.db.copies[id] = c
			removed++
		}
	}
	return removed, nil
}

func (m memCopies) DeleteByTitle(_ context.Context, _ store.Execer, titleID string) error {
	for id, c := range m.db.copies {
		if c.TitleID == titleID {
			delete(m.db.copies, id)
		}
	}
	return nil
}

type memLoans struct{ db *memDB }

func (m memLoans) Open(_ context.Context, _ store.Execer, loan models.LoanRecord) error {
	m.db.loans = append(m.db.loans, loan)
	return nil
}

func (m memLoans) CloseOpen(_ context.Context, _ store.Execer, copyID, accountID string, returnedAt time.Time) (int64, error) {
	var n int64
	for i, loan := range m.db.loans {
		if loan.CopyID == copyID && loan.AccountID == accountID && loan.ReturnedAt == nil {
			at := returnedAt
			m.db.loans[i].ReturnedAt = &at
			n++
		}
	}
	return n, nil
}

func (m memLoans) ListByCopy(_ context.Context, copyID string) ([]store.LoanHistoryRow, error) {
	rows := []store.LoanHistoryRow{}
	for _, loan := range m.db.loans {
		if loan.CopyID == copyID {
			rows = append(rows, store.LoanHistoryRow{LoanRecord: loan, Username: m.db.accounts[loan.AccountID].Username})
		}
	}
	return rows, nil
}

func (m memLoans) ListByAccount(_ context.Context, accountID string) ([]store.AccountLoanRow, error) {
	rows := []store.AccountLoanRow{}
	for _, loan := range m.db.loans {
		if loan.AccountID == accountID {
			title := m.db.titles[m.db.copies[loan.CopyID].TitleID]
			rows = append(rows, store.AccountLoanRow{LoanRecord: loan, TitleName: title.Name})
		}
	}
	return rows, nil
}

func (m memLoans) DeleteByAccount(_ context.Context, _ store.Execer, accountID string) error {
	kept := m.db.loans[:0]
	for _, loan := range m.db.loans {
		if loan.AccountID != accountID {
			kept = append(kept, loan)
		}
	}
	m.db.loans = kept
	return nil
}

func (m memLoans) DeleteByTitle(_ context.Context, _ store.Execer, titleID string) error {
	kept := m.db.loans[:0]
	for _, loan := range m.db.loans {
		if m.db.copies[loan.CopyID].TitleID != titleID {
			kept = append(kept, loan)
		}
	}
	m.db.loans = kept
	return nil
}

func (m memLoans) open(copyID string) []models.LoanRecord {
	var rows []models.LoanRecord
	for _, loan := range m.db.loans {
		if loan.CopyID == copyID && loan.ReturnedAt == nil {
			rows = append(rows, loan)
		}
	}
	return rows
}

type memPurchases struct{ db *memDB }

func (m memPurchases) Create(_ context.Context, _ store.Execer, purchase models.PurchaseRecord) error {
	m.db.purchases = append(m.db.purchases, purchase)
	return nil
}

func (m memPurchases) ListByAccount(_ context.Context, accountID string) ([]models.PurchaseRecord, error) {
	rows := []models.PurchaseRecord{}
	for _, purchase := range m.db.purchases {
		if purchase.AccountID == accountID {
			rows = append(rows, purchase)
		}
	}
	return rows, nil
}

func (m memPurchases) MonthlySummary(_ context.Context, from, to time.Time) (store.SalesSummary, error) {
	var summary store.SalesSummary
	for _, purchase := range m.db.purchases {
		if !purchase.PurchasedAt.Before(from) && purchase.PurchasedAt.Before(to) {
			summary.Count++
			summary.Revenue += purchase.PricePaid
		}
	}
	return summary, nil
}

func (m memPurchases) DeleteByAccount(_ context.Context, _ store.Execer, accountID string) error {
	kept := m.db.purchases[:0]
	for _, purchase := range m.db.purchases {
		if purchase.AccountID != accountID {
			kept = append(kept, purchase)
		}
	}
	m.db.purchases = kept
	return nil
}

type memReviews struct{ db *memDB }

func (m memReviews) AddComment(_ context.Context, _ store.Execer, comment models.Comment) error {
	m.db.comments[comment.ID] = comment
	return nil
}

func (m memReviews) ListComments(_ context.Context, titleID string) ([]models.Comment, error) {
	rows := []models.Comment{}
	for _, comment := range m.db.comments {
		if comment.TitleID == titleID {
			comment.Username = m.db.accounts[comment.AccountID].Username
			rows = append(rows, comment)
		}
	}
	return rows, nil
}

func (m memReviews) DeleteComment(_ context.Context, _ store.Execer, commentID string) (int64, error) {
	if _, ok := m.db.comments[commentID]; !ok {
		return 0, nil
	}
	delete(m.db.comments, commentID)
	return 1, nil
}

func (m memReviews) UpsertRating(_ context.Context, _ store.Execer, rating models.Rating) error {
	m.db.ratings[rating.AccountID+"|"+rating.TitleID] = rating
	return nil
}

func (m memReviews) RatingSummary(_ context.Context, titleID string) (store.RatingSummary, error) {
	summary := store.RatingSummary{TitleID: titleID}
	var total int
	for _, rating := range m.db.ratings {
		if rating.TitleID == titleID {
			summary.Count++
			total += rating.Score
		}
	}
	if summary.Count > 0 {
		summary.Average = float64(total) / float64(summary.Count)
	}
	return summary, nil
}

func (m memReviews) DeleteByAccount(_ context.Context, _ store.Execer, accountID string) error {
	for key, rating := range m.db.ratings {
		if rating.AccountID == accountID {
			delete(m.db.ratings, key)
		}
	}
	for id, comment := range m.db.comments {
		if comment.AccountID == accountID {
			delete(m.db.comments, id)
		}
	}
	return nil
}

func (m memReviews) DeleteByTitle(_ context.Context, _ store.Execer, titleID string) error {
	for key, rating := range m.db.ratings {
		if rating.TitleID == titleID {
			delete(m.db.ratings, key)
		}
	}
	for id, comment := range m.db.comments {
		if comment.TitleID == titleID {
			delete(m.db.comments, id)
		}
	}
	return nil
}

type testEnv struct {
	db       *memDB
	clock    *fakeClock
	hub      *stubHub
	audit    *stubAuditStore
	lending  *LendingService
	ledger   *LedgerService
	catalog  *CatalogService
	accounts *AccountService
	reviews  *ReviewService
	reports  *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := newMemDB()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	hub := &stubHub{}
	audit := &stubAuditStore{}
	runner := fakeTxRunner{}
	accounts := memAccounts{mem}
	titles := memTitles{mem}
	copies := memCopies{mem}
	loans := memLoans{mem}
	purchases := memPurchases{mem}
	reviews := memReviews{mem}
	return &testEnv{
		db:       mem,
		clock:    clock,
		hub:      hub,
		audit:    audit,
		lending:  NewLendingService(runner, accounts, titles, copies, loans, purchases, audit, hub, clock, 0),
		ledger:   NewLedgerService(runner, accounts, audit, hub),
		catalog:  NewCatalogService(runner, titles, memCategories{mem}, copies, loans, reviews, audit),
		accounts: NewAccountService(runner, accounts, copies, loans, purchases, reviews, audit, bcrypt.MinCost),
		reviews:  NewReviewService(runner, titles, reviews, audit, clock),
		reports:  NewReportService(accounts, loans, purchases),
	}
}

func (e *testEnv) addAccount(id string, role models.Role, credits int64) {
	e.db.accounts[id] = models.Account{ID: id, Username: id, Email: id + "@example.com", Role: role, Credits: credits}
}

// addTitle stores a title with copies named <id>-c1, <id>-c2, ...
func (e *testEnv) addTitle(id string, price, costPerDay int64, copies int) {
	e.db.titles[id] = models.Title{ID: id, Name: "Title " + id, Author: "Author " + id, ISBN: id, Price: price, CostPerDay: costPerDay}
	for i := 1; i <= copies; i++ {
		copyID := id + "-c" + string(rune('0'+i))
		e.db.copies[copyID] = models.Copy{ID: copyID, TitleID: id, Status: models.CopyAvailable}
	}
}
