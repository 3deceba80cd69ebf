package services

import (
	"context"
	"fmt"
	"time"

	"library/internal/models"
	"library/internal/store"
)

// ReportService backs the staff dashboard and the CSV exports.
type ReportService struct {
	accounts  AccountStore
	loans     LoanStore
	purchases PurchaseStore
}

func NewReportService(accounts AccountStore, loans LoanStore, purchases PurchaseStore) *ReportService {
	return &ReportService{accounts: accounts, loans: loans, purchases: purchases}
}

// MonthlySales sums the purchases of one calendar month in UTC.
func (s *ReportService) MonthlySales(ctx context.Context, year, month int) (store.SalesSummary, error) {
	if year < 1970 || year > 9999 || month < 1 || month > 12 {
		return store.SalesSummary{}, ErrInvalidPeriod
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	summary, err := s.purchases.MonthlySummary(ctx, from, to)
	if err != nil {
		return store.SalesSummary{}, fmt.Errorf("summarizing sales: %w", err)
	}
	summary.Year = year
	summary.Month = month
	return summary, nil
}

func (s *ReportService) Purchases(ctx context.Context, accountID string) (models.Account, []models.PurchaseRecord, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, nil, notFound(err, "loading account")
	}
	rows, err := s.purchases.ListByAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, nil, fmt.Errorf("listing purchases: %w", err)
	}
	return account, rows, nil
}

func (s *ReportService) Loans(ctx context.Context, accountID string) (models.Account, []store.AccountLoanRow, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, nil, notFound(err, "loading account")
	}
	rows, err := s.loans.ListByAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, nil, fmt.Errorf("listing loans: %w", err)
	}
	return account, rows, nil
}
