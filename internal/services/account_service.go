package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"library/internal/auth"
	"library/internal/db"
	"library/internal/lending"
	"library/internal/models"
	"library/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountService struct {
	txRunner   db.TxRunner
	accounts   AccountStore
	copies     CopyStore
	loans      LoanStore
	purchases  PurchaseStore
	reviews    ReviewStore
	audit      AuditStore
	bcryptCost int
}

func NewAccountService(txRunner db.TxRunner, accounts AccountStore, copies CopyStore, loans LoanStore, purchases PurchaseStore, reviews ReviewStore, audit AuditStore, bcryptCost int) *AccountService {
	return &AccountService{
		txRunner:   txRunner,
		accounts:   accounts,
		copies:     copies,
		loans:      loans,
		purchases:  purchases,
		reviews:    reviews,
		audit:      audit,
		bcryptCost: bcryptCost,
	}
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Register creates a borrower account with no credits.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (models.Account, error) {
	return s.CreateWithRole(ctx, "", req, models.RoleUser)
}

// CreateStaff is the admin path for adding librarians.
func (s *AccountService) CreateStaff(ctx context.Context, actorID string, req RegisterRequest) (models.Account, error) {
	return s.CreateWithRole(ctx, actorID, req, models.RoleLibrarian)
}

func (s *AccountService) CreateWithRole(ctx context.Context, actorID string, req RegisterRequest, role models.Role) (models.Account, error) {
	if !lending.ValidRole(role) {
		return models.Account{}, ErrInvalidRole
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.ValidateUsername(req.Username); err != nil {
		return models.Account{}, err
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		return models.Account{}, err
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		return models.Account{}, err
	}
	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hashing password: %w", err)
	}
	account := models.Account{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		if role == models.RoleUser && actorID == "" {
			return nil
		}
		return s.audit.Log(ctx, tx, actorID, "account.created", "account", account.ID, auditData(map[string]any{
			"username": account.Username,
			"role":     role,
		}))
	})
	if db.IsUniqueViolation(err) {
		return models.Account{}, ErrDuplicate
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown username
// and a wrong password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (models.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("loading account: %w", err)
	}
	if !auth.CheckPassword(account.PasswordHash, password) {
		return models.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, accountID string) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, notFound(err, "loading account")
	}
	return account, nil
}

func (s *AccountService) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	if !lending.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	return s.accounts.ListByRole(ctx, role)
}

// DeleteAccount puts the account's borrowed copies back on the shelf, then
// deletes its ratings, comments, loans, purchases and the account itself.
// Admin accounts are refused.
func (s *AccountService) DeleteAccount(ctx context.Context, actorID, accountID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return notFound(err, "locking account")
		}
		if account.Role == models.RoleAdmin {
			return ErrProtectedAccount
		}
		released, err := s.copies.ReleaseAllHeldBy(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("releasing copies: %w", err)
		}
		if err := s.reviews.DeleteByAccount(ctx, tx, accountID); err != nil {
			return fmt.Errorf("deleting reviews: %w", err)
		}
		if err := s.loans.DeleteByAccount(ctx, tx, accountID); err != nil {
			return fmt.Errorf("deleting loans: %w", err)
		}
		if err := s.purchases.DeleteByAccount(ctx, tx, accountID); err != nil {
			return fmt.Errorf("deleting purchases: %w", err)
		}
		rows, err := s.accounts.Delete(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("deleting account: %w", err)
		}
		if rows == 0 {
			return lending.ErrNotFound
		}
		return s.audit.Log(ctx, tx, actorID, "account.deleted", "account", accountID, auditData(map[string]any{
			"username":        account.Username,
			"released_copies": released,
		}))
	})
}
