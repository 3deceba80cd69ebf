package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"library/internal/models"
	"library/internal/money"
	"library/internal/store"
)

const timeLayout = time.RFC3339

var (
	purchaseHeader = []string{"purchase_id", "username", "title", "author", "price_paid", "purchased_at"}
	loanHeader     = []string{"loan_id", "username", "copy_id", "title", "borrowed_at", "returned_at"}
)

// Purchases writes one row per purchase of account. Money is rendered as a
// decimal string with two places.
func Purchases(w io.Writer, account models.Account, rows []models.PurchaseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(purchaseHeader); err != nil {
		return fmt.Errorf("write purchase header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ID,
			account.Username,
			row.TitleName,
			row.TitleAuthor,
			money.FormatMinor(row.PricePaid),
			row.PurchasedAt.UTC().Format(timeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write purchase %s: %w", row.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Loans writes one row per loan of account. Open loans have an empty
// returned_at column.
func Loans(w io.Writer, account models.Account, rows []store.AccountLoanRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(loanHeader); err != nil {
		return fmt.Errorf("write loan header: %w", err)
	}
	for _, row := range rows {
		returned := ""
		if row.ReturnedAt != nil {
			returned = row.ReturnedAt.UTC().Format(timeLayout)
		}
		record := []string{
			row.ID,
			account.Username,
			row.CopyID,
			row.TitleName,
			row.BorrowedAt.UTC().Format(timeLayout),
			returned,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write loan %s: %w", row.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename builds the attachment name for an export of kind.
func Filename(account models.Account, kind string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s.csv", account.Username, kind, now.UTC().Format("20060102"))
}
