package store

import (
	"context"

	"library/internal/models"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id, username, email, password_hash, role, credits, created_at`

func (s *AccountStore) Create(ctx context.Context, tx Execer, account models.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, role, credits)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, account.ID, account.Username, account.Email, account.PasswordHash, account.Role, account.Credits)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

// GetForUpdate locks the account row until the surrounding transaction ends.
func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) UpdateCredits(ctx context.Context, tx Execer, accountID string, credits int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET credits = $1, updated_at = NOW()
		WHERE id = $2
	`, credits, accountID)
	return err
}

func (s *AccountStore) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	rows := []models.Account{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE role = $1
		ORDER BY username
	`, role)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
