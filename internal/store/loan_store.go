package store

import (
	"context"
	"time"

	"library/internal/models"
)

type LoanStore struct {
	db DB
}

func NewLoanStore(db DB) *LoanStore {
	return &LoanStore{db: db}
}

// LoanHistoryRow is one loan joined with the borrower's username.
type LoanHistoryRow struct {
	models.LoanRecord
	Username string `db:"username" json:"username"`
}

// AccountLoanRow is one loan joined with the title of the copy.
type AccountLoanRow struct {
	models.LoanRecord
	TitleName string `db:"title_name" json:"title_name"`
}

func (s *LoanStore) Open(ctx context.Context, tx Execer, loan models.LoanRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO loans (id, account_id, copy_id, borrowed_at)
		VALUES ($1, $2, $3, $4)
	`, loan.ID, loan.AccountID, loan.CopyID, loan.BorrowedAt)
	return err
}

// CloseOpen stamps the open loan of an account on a copy as returned.
func (s *LoanStore) CloseOpen(ctx context.Context, tx Execer, copyID, accountID string, returnedAt time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE loans
		SET returned_at = $1
		WHERE copy_id = $2 AND account_id = $3 AND returned_at IS NULL
	`, returnedAt, copyID, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *LoanStore) ListByCopy(ctx context.Context, copyID string) ([]LoanHistoryRow, error) {
	rows := []LoanHistoryRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT l.id, l.account_id, l.copy_id, l.borrowed_at, l.returned_at, a.username
		FROM loans l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.copy_id = $1
		ORDER BY l.borrowed_at DESC
	`, copyID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LoanStore) ListByAccount(ctx context.Context, accountID string) ([]AccountLoanRow, error) {
	rows := []AccountLoanRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT l.id, l.account_id, l.copy_id, l.borrowed_at, l.returned_at, t.name AS title_name
		FROM loans l
		JOIN copies c ON c.id = l.copy_id
		JOIN titles t ON t.id = c.title_id
		WHERE l.account_id = $1
		ORDER BY l.borrowed_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LoanStore) DeleteByAccount(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE account_id = $1`, accountID)
	return err
}

func (s *LoanStore) DeleteByTitle(ctx context.Context, tx Execer, titleID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM loans
		WHERE copy_id IN (SELECT id FROM copies WHERE title_id = $1)
	`, titleID)
	return err
}
