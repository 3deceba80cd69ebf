package store

import (
	"context"
	"time"

	"library/internal/models"
)

type PurchaseStore struct {
	db DB
}

func NewPurchaseStore(db DB) *PurchaseStore {
	return &PurchaseStore{db: db}
}

// SalesSummary aggregates the purchases made in one calendar month.
type SalesSummary struct {
	Year    int   `db:"-" json:"year"`
	Month   int   `db:"-" json:"month"`
	Count   int64 `db:"sales_count" json:"sales_count"`
	Revenue int64 `db:"revenue" json:"revenue"`
}

func (s *PurchaseStore) Create(ctx context.Context, tx Execer, purchase models.PurchaseRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO purchases (id, account_id, title_name, title_author, price_paid, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, purchase.ID, purchase.AccountID, purchase.TitleName, purchase.TitleAuthor, purchase.PricePaid, purchase.PurchasedAt)
	return err
}

func (s *PurchaseStore) ListByAccount(ctx context.Context, accountID string) ([]models.PurchaseRecord, error) {
	rows := []models.PurchaseRecord{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, title_name, title_author, price_paid, purchased_at
		FROM purchases
		WHERE account_id = $1
		ORDER BY purchased_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MonthlySummary counts purchases in [from, to).
func (s *PurchaseStore) MonthlySummary(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	var row SalesSummary
	err := s.db.GetContext(ctx, &row, `
		SELECT COUNT(1) AS sales_count, COALESCE(SUM(price_paid), 0) AS revenue
		FROM purchases
		WHERE purchased_at >= $1 AND purchased_at < $2
	`, from, to)
	if err != nil {
		return SalesSummary{}, err
	}
	return row, nil
}

func (s *PurchaseStore) DeleteByAccount(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM purchases WHERE account_id = $1`, accountID)
	return err
}
