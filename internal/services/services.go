package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"library/internal/lending"
	"library/internal/models"
	"library/internal/store"
	"library/internal/websocket"
)

var (
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidQuantity    = errors.New("quantity must be at least one")
	ErrInvalidTitle       = errors.New("invalid title")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidComment     = errors.New("invalid comment")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidPeriod      = errors.New("invalid report period")
	ErrProtectedAccount   = errors.New("admin accounts cannot be deleted")
	ErrNotOverdue         = errors.New("copy is still within its loan period")
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, account models.Account) error
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	GetByUsername(ctx context.Context, username string) (models.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	UpdateCredits(ctx context.Context, tx store.Execer, accountID string, credits int64) error
	ListByRole(ctx context.Context, role models.Role) ([]models.Account, error)
	Delete(ctx context.Context, tx store.Execer, accountID string) (int64, error)
}

type TitleStore interface {
	Create(ctx context.Context, tx store.Execer, title models.Title) error
	GetByID(ctx context.Context, titleID string) (models.Title, error)
	Get(ctx context.Context, q store.Getter, titleID string) (models.Title, error)
	UpdatePricing(ctx context.Context, tx store.Execer, titleID string, price, costPerDay int64) (int64, error)
	Delete(ctx context.Context, tx store.Execer, titleID string) (int64, error)
	Search(ctx context.Context, filter store.TitleFilter) ([]store.TitleListing, error)
}

type CategoryStore interface {
	Create(ctx context.Context, tx store.Execer, category models.Category) error
	List(ctx context.Context) ([]models.Category, error)
}

type CopyStore interface {
	CreateMany(ctx context.Context, tx store.Execer, titleID string, ids []string) error
	GetByID(ctx context.Context, copyID string) (models.Copy, error)
	GetForUpdate(ctx context.Context, tx store.Getter, copyID string) (models.Copy, error)
	PickAvailableForUpdate(ctx context.Context, tx store.Getter, titleID string) (models.Copy, error)
	HasBorrowed(ctx context.Context, tx store.Getter, titleID, accountID string) (bool, error)
	Update(ctx context.Context, tx store.Execer, c models.Copy) error
	CountAvailable(ctx context.Context, titleID string) (int64, error)
	ListByTitle(ctx context.Context, titleID string) ([]models.Copy, error)
	ListBorrowedByHolder(ctx context.Context, accountID string) ([]store.BorrowedCopy, error)
	ReleaseAllHeldBy(ctx context.Context, tx store.Execer, accountID string) (int64, error)
	RemoveAvailable(ctx context.Context, tx store.Execer, titleID string, n int) (int64, error)
	DeleteByTitle(ctx context.Context, tx store.Execer, titleID string) error
}

type LoanStore interface {
	Open(ctx context.Context, tx store.Execer, loan models.LoanRecord) error
	CloseOpen(ctx context.Context, tx store.Execer, copyID, accountID string, returnedAt time.Time) (int64, error)
	ListByCopy(ctx context.Context, copyID string) ([]store.LoanHistoryRow, error)
	ListByAccount(ctx context.Context, accountID string) ([]store.AccountLoanRow, error)
	DeleteByAccount(ctx context.Context, tx store.Execer, accountID string) error
	DeleteByTitle(ctx context.Context, tx store.Execer, titleID string) error
}

type PurchaseStore interface {
	Create(ctx context.Context, tx store.Execer, purchase models.PurchaseRecord) error
	ListByAccount(ctx context.Context, accountID string) ([]models.PurchaseRecord, error)
	MonthlySummary(ctx context.Context, from, to time.Time) (store.SalesSummary, error)
	DeleteByAccount(ctx context.Context, tx store.Execer, accountID string) error
}

type ReviewStore interface {
	AddComment(ctx context.Context, tx store.Execer, comment models.Comment) error
	ListComments(ctx context.Context, titleID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, tx store.Execer, commentID string) (int64, error)
	UpsertRating(ctx context.Context, tx store.Execer, rating models.Rating) error
	RatingSummary(ctx context.Context, titleID string) (store.RatingSummary, error)
	DeleteByAccount(ctx context.Context, tx store.Execer, accountID string) error
	DeleteByTitle(ctx context.Context, tx store.Execer, titleID string) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type CreditHub interface {
	BroadcastCredits(accountID string, update websocket.CreditUpdate)
}

// notFound turns a missing row into lending.ErrNotFound and wraps anything
// else with the failing step.
func notFound(err error, step string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return lending.ErrNotFound
	}
	return fmt.Errorf("%s: %w", step, err)
}

func auditData(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}
