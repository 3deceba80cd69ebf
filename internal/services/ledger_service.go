package services

import (
	"context"
	"fmt"
	"log"

	"library/internal/db"
	"library/internal/lending"
	"library/internal/money"
	"library/internal/websocket"

	"github.com/jmoiron/sqlx"
)

// LedgerService owns direct balance changes. The account balance is the
// only running total; audit logs record who changed it.
type LedgerService struct {
	txRunner db.TxRunner
	accounts AccountStore
	audit    AuditStore
	hub      CreditHub
}

func NewLedgerService(txRunner db.TxRunner, accounts AccountStore, audit AuditStore, hub CreditHub) *LedgerService {
	return &LedgerService{
		txRunner: txRunner,
		accounts: accounts,
		audit:    audit,
		hub:      hub,
	}
}

// TopUp adds staff-issued credits to an account.
func (s *LedgerService) TopUp(ctx context.Context, actorID, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, lending.ErrInvalidAmount
	}
	return s.apply(ctx, actorID, accountID, "credits.top_up", amount, lending.TopUp)
}

// Debit subtracts amount, failing with lending.ErrInsufficientCredits
// rather than going negative.
func (s *LedgerService) Debit(ctx context.Context, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, lending.ErrInvalidAmount
	}
	return s.apply(ctx, accountID, accountID, "credits.debit", amount, lending.Debit)
}

func (s *LedgerService) Credit(ctx context.Context, accountID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, lending.ErrInvalidAmount
	}
	return s.apply(ctx, accountID, accountID, "credits.credit", amount, lending.Credit)
}

func (s *LedgerService) apply(ctx context.Context, actorID, accountID, action string, amount int64, op func(balance, amount int64) (int64, error)) (int64, error) {
	var credits int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return notFound(err, "locking account")
		}
		next, err := op(account.Credits, amount)
		if err != nil {
			return err
		}
		if err := s.accounts.UpdateCredits(ctx, tx, accountID, next); err != nil {
			return fmt.Errorf("updating credits: %w", err)
		}
		credits = next
		return s.audit.Log(ctx, tx, actorID, action, "account", accountID, auditData(map[string]any{
			"amount": amount,
			"before": account.Credits,
			"after":  next,
		}))
	})
	if err != nil {
		return 0, err
	}
	log.Printf("ledger: %s %s on %s by %s", action, money.FormatMinor(amount), accountID, actorID)
	if s.hub != nil {
		s.hub.BroadcastCredits(accountID, websocket.CreditUpdate{
			AccountID: accountID,
			Credits:   money.FormatMinor(credits),
			Reason:    action,
		})
	}
	return credits, nil
}
