package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"library/internal/db"
	"library/internal/lending"
	"library/internal/models"
	"library/internal/money"
	"library/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LendingService runs the copy lifecycle: issue, return, sale of a shelf
// copy and sale of a borrowed copy. Each call is one serializable
// transaction that locks the account row before any copy row.
type LendingService struct {
	txRunner   db.TxRunner
	accounts   AccountStore
	titles     TitleStore
	copies     CopyStore
	loans      LoanStore
	purchases  PurchaseStore
	audit      AuditStore
	hub        CreditHub
	clock      lending.Clock
	loanPeriod time.Duration
}

func NewLendingService(txRunner db.TxRunner, accounts AccountStore, titles TitleStore, copies CopyStore, loans LoanStore, purchases PurchaseStore, audit AuditStore, hub CreditHub, clock lending.Clock, loanPeriod time.Duration) *LendingService {
	if clock == nil {
		clock = lending.SystemClock{}
	}
	if loanPeriod <= 0 {
		loanPeriod = lending.DefaultLoanPeriod
	}
	return &LendingService{
		txRunner:   txRunner,
		accounts:   accounts,
		titles:     titles,
		copies:     copies,
		loans:      loans,
		purchases:  purchases,
		audit:      audit,
		hub:        hub,
		clock:      clock,
		loanPeriod: loanPeriod,
	}
}

type ReturnResult struct {
	Copy    models.Copy `json:"copy"`
	Refund  int64       `json:"refund"`
	Credits int64       `json:"credits"`
}

type SaleResult struct {
	Purchase models.PurchaseRecord `json:"purchase"`
	Credits  int64                 `json:"credits"`
}

type DueLoan struct {
	CopyID     string    `json:"copy_id"`
	TitleID    string    `json:"title_id"`
	TitleName  string    `json:"title_name"`
	Author     string    `json:"author"`
	BorrowedAt time.Time `json:"borrowed_at"`
	DueAt      time.Time `json:"due_at"`
	Days       int64     `json:"days"`
	Accrued    int64     `json:"accrued"`
	Overdue    bool      `json:"overdue"`
}

type DueSummary struct {
	Loans []DueLoan `json:"loans"`
	Total int64     `json:"total"`
}

// Issue lends the lowest-id available copy of a title to the account.
func (s *LendingService) Issue(ctx context.Context, titleID, accountID string) (models.Copy, error) {
	var issued models.Copy
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.accounts.GetForUpdate(ctx, tx, accountID); err != nil {
			return notFound(err, "locking account")
		}
		if _, err := s.titles.Get(ctx, tx, titleID); err != nil {
			return notFound(err, "loading title")
		}
		held, err := s.copies.HasBorrowed(ctx, tx, titleID, accountID)
		if err != nil {
			return fmt.Errorf("checking held copies: %w", err)
		}
		if held {
			return lending.ErrAlreadyBorrowed
		}
		c, err := s.copies.PickAvailableForUpdate(ctx, tx, titleID)
		if errors.Is(err, sql.ErrNoRows) {
			return lending.ErrOutOfStock
		}
		if err != nil {
			return fmt.Errorf("picking copy: %w", err)
		}
		now := s.clock.Now()
		borrowed, err := lending.Borrow(c, accountID, now, s.loanPeriod)
		if err != nil {
			return err
		}
		if err := s.copies.Update(ctx, tx, borrowed); err != nil {
			return fmt.Errorf("updating copy: %w", err)
		}
		if err := s.loans.Open(ctx, tx, models.LoanRecord{
			ID:         uuid.NewString(),
			AccountID:  accountID,
			CopyID:     borrowed.ID,
			BorrowedAt: now,
		}); err != nil {
			return fmt.Errorf("opening loan: %w", err)
		}
		issued = borrowed
		return s.audit.Log(ctx, tx, accountID, "loan.issued", "copy", borrowed.ID, auditData(map[string]any{
			"title_id": titleID,
		}))
	})
	if err != nil {
		return models.Copy{}, err
	}
	return issued, nil
}

// Return checks a copy back in and credits the unused part of the loan
// period. A copy held past the period is refused with lending.ErrOverdue and
// nothing changes.
func (s *LendingService) Return(ctx context.Context, copyID, accountID string) (ReturnResult, error) {
	var result ReturnResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return notFound(err, "locking account")
		}
		c, err := s.copies.GetForUpdate(ctx, tx, copyID)
		if err != nil {
			return notFound(err, "locking copy")
		}
		if c.Status != models.CopyBorrowed {
			return lending.ErrNotBorrowed
		}
		if !lending.HeldBy(c, accountID) {
			return lending.ErrUnauthorized
		}
		title, err := s.titles.Get(ctx, tx, c.TitleID)
		if err != nil {
			return notFound(err, "loading title")
		}
		now := s.clock.Now()
		refund, err := lending.Refund(*c.BorrowedAt, now, s.loanPeriod, title.CostPerDay)
		if err != nil {
			return err
		}
		credits, err := lending.Credit(account.Credits, refund)
		if err != nil {
			return err
		}
		if refund > 0 {
			if err := s.accounts.UpdateCredits(ctx, tx, accountID, credits); err != nil {
				return fmt.Errorf("crediting refund: %w", err)
			}
		}
		released, err := lending.Release(c)
		if err != nil {
			return err
		}
		if err := s.copies.Update(ctx, tx, released); err != nil {
			return fmt.Errorf("updating copy: %w", err)
		}
		if _, err := s.loans.CloseOpen(ctx, tx, copyID, accountID, now); err != nil {
			return fmt.Errorf("closing loan: %w", err)
		}
		result = ReturnResult{Copy: released, Refund: refund, Credits: credits}
		return s.audit.Log(ctx, tx, accountID, "loan.returned", "copy", copyID, auditData(map[string]any{
			"refund": refund,
		}))
	})
	if err != nil {
		return ReturnResult{}, err
	}
	if result.Refund > 0 {
		s.broadcast(accountID, result.Credits, "refund")
	}
	return result, nil
}

// Sell debits the title price and retires one shelf copy. The title itself
// stays in the catalog even when its last copy is sold.
func (s *LendingService) Sell(ctx context.Context, titleID, accountID string) (SaleResult, error) {
	var result SaleResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return notFound(err, "locking account")
		}
		title, err := s.titles.Get(ctx, tx, titleID)
		if err != nil {
			return notFound(err, "loading title")
		}
		if account.Credits < title.Price {
			return lending.ErrInsufficientCredits
		}
		c, err := s.copies.PickAvailableForUpdate(ctx, tx, titleID)
		if errors.Is(err, sql.ErrNoRows) {
			return lending.ErrOutOfStock
		}
		if err != nil {
			return fmt.Errorf("picking copy: %w", err)
		}
		purchase, credits, err := s.completeSale(ctx, tx, account, title, c)
		if err != nil {
			return err
		}
		result = SaleResult{Purchase: purchase, Credits: credits}
		return nil
	})
	if err != nil {
		return SaleResult{}, err
	}
	s.broadcast(accountID, result.Credits, "purchase")
	return result, nil
}

// SellBorrowed converts a loan into ownership. The open loan record is left
// open since the copy is consumed, not returned.
func (s *LendingService) SellBorrowed(ctx context.Context, copyID, accountID string) (SaleResult, error) {
	var result SaleResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return notFound(err, "locking account")
		}
		c, err := s.copies.GetForUpdate(ctx, tx, copyID)
		if err != nil {
			return notFound(err, "locking copy")
		}
		if c.Status != models.CopyBorrowed {
			return lending.ErrNotBorrowed
		}
		if !lending.HeldBy(c, accountID) {
			return lending.ErrUnauthorized
		}
		title, err := s.titles.Get(ctx, tx, c.TitleID)
		if err != nil {
			return notFound(err, "loading title")
		}
		purchase, credits, err := s.completeSale(ctx, tx, account, title, c)
		if err != nil {
			return err
		}
		result = SaleResult{Purchase: purchase, Credits: credits}
		return nil
	})
	if err != nil {
		return SaleResult{}, err
	}
	s.broadcast(accountID, result.Credits, "purchase")
	return result, nil
}

func (s *LendingService) completeSale(ctx context.Context, tx *sqlx.Tx, account models.Account, title models.Title, c models.Copy) (models.PurchaseRecord, int64, error) {
	credits, err := lending.Debit(account.Credits, title.Price)
	if err != nil {
		return models.PurchaseRecord{}, 0, err
	}
	removed, err := lending.Remove(c)
	if err != nil {
		return models.PurchaseRecord{}, 0, err
	}
	if err := s.copies.Update(ctx, tx, removed); err != nil {
		return models.PurchaseRecord{}, 0, fmt.Errorf("removing copy: %w", err)
	}
	if err := s.accounts.UpdateCredits(ctx, tx, account.ID, credits); err != nil {
		return models.PurchaseRecord{}, 0, fmt.Errorf("debiting price: %w", err)
	}
	purchase := models.PurchaseRecord{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		TitleName:   title.Name,
		TitleAuthor: title.Author,
		PricePaid:   title.Price,
		PurchasedAt: s.clock.Now(),
	}
	if err := s.purchases.Create(ctx, tx, purchase); err != nil {
		return models.PurchaseRecord{}, 0, fmt.Errorf("recording purchase: %w", err)
	}
	if err := s.audit.Log(ctx, tx, account.ID, "copy.sold", "copy", c.ID, auditData(map[string]any{
		"title_id":   title.ID,
		"price_paid": title.Price,
		"was_loaned": c.Status == models.CopyBorrowed,
	})); err != nil {
		return models.PurchaseRecord{}, 0, err
	}
	return purchase, credits, nil
}

// ForceReturn lets staff check in a copy held past its loan period. The
// holder gets no refund and no extra charge.
func (s *LendingService) ForceReturn(ctx context.Context, actorID, copyID string) (models.Copy, error) {
	var released models.Copy
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		c, err := s.copies.GetForUpdate(ctx, tx, copyID)
		if err != nil {
			return notFound(err, "locking copy")
		}
		if c.Status != models.CopyBorrowed {
			return lending.ErrNotBorrowed
		}
		now := s.clock.Now()
		if !lending.Overdue(*c.BorrowedAt, now, s.loanPeriod) {
			return ErrNotOverdue
		}
		holder := *c.HolderID
		released, err = lending.Release(c)
		if err != nil {
			return err
		}
		if err := s.copies.Update(ctx, tx, released); err != nil {
			return fmt.Errorf("updating copy: %w", err)
		}
		if _, err := s.loans.CloseOpen(ctx, tx, copyID, holder, now); err != nil {
			return fmt.Errorf("closing loan: %w", err)
		}
		return s.audit.Log(ctx, tx, actorID, "loan.force_returned", "copy", copyID, auditData(map[string]any{
			"holder_id": holder,
			"days":      lending.ElapsedDays(*c.BorrowedAt, now),
		}))
	})
	if err != nil {
		return models.Copy{}, err
	}
	return released, nil
}

// AmountDue lists the account's open loans with their running charge.
func (s *LendingService) AmountDue(ctx context.Context, accountID string) (DueSummary, error) {
	borrowed, err := s.copies.ListBorrowedByHolder(ctx, accountID)
	if err != nil {
		return DueSummary{}, fmt.Errorf("listing borrowed copies: %w", err)
	}
	now := s.clock.Now()
	summary := DueSummary{Loans: make([]DueLoan, 0, len(borrowed))}
	for _, b := range borrowed {
		days := lending.ElapsedDays(b.BorrowedAt, now)
		accrued := lending.AccruedCharge(b.BorrowedAt, now, b.CostPerDay)
		summary.Loans = append(summary.Loans, DueLoan{
			CopyID:     b.CopyID,
			TitleID:    b.TitleID,
			TitleName:  b.TitleName,
			Author:     b.Author,
			BorrowedAt: b.BorrowedAt,
			DueAt:      b.DueAt,
			Days:       days,
			Accrued:    accrued,
			Overdue:    lending.Overdue(b.BorrowedAt, now, s.loanPeriod),
		})
		summary.Total += accrued
	}
	return summary, nil
}

func (s *LendingService) broadcast(accountID string, credits int64, reason string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastCredits(accountID, websocket.CreditUpdate{
		AccountID: accountID,
		Credits:   money.FormatMinor(credits),
		Reason:    reason,
	})
	log.Printf("lending: %s for %s, credits now %s", reason, accountID, money.FormatMinor(credits))
}
