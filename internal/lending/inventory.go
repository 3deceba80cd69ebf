package lending

import (
	"time"

	"library/internal/models"
)

// DefaultLoanPeriod is the prepaid borrow window.
const DefaultLoanPeriod = 7 * 24 * time.Hour

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Borrow moves an available copy to borrowed by accountID.
func Borrow(c models.Copy, accountID string, now time.Time, period time.Duration) (models.Copy, error) {
	if c.Status != models.CopyAvailable {
		return models.Copy{}, ErrInvalidTransition
	}
	borrowedAt := now
	dueAt := now.Add(period)
	holder := accountID
	c.Status = models.CopyBorrowed
	c.HolderID = &holder
	c.BorrowedAt = &borrowedAt
	c.DueAt = &dueAt
	return c, nil
}

// Release returns a borrowed copy to the shelf.
func Release(c models.Copy) (models.Copy, error) {
	if c.Status != models.CopyBorrowed {
		return models.Copy{}, ErrInvalidTransition
	}
	return clearHolder(c, models.CopyAvailable), nil
}

// Remove takes a copy out of circulation for good. Removed copies cannot
// come back.
func Remove(c models.Copy) (models.Copy, error) {
	if c.Status == models.CopyRemoved {
		return models.Copy{}, ErrInvalidTransition
	}
	return clearHolder(c, models.CopyRemoved), nil
}

// HeldBy reports whether the copy is currently borrowed by accountID.
func HeldBy(c models.Copy, accountID string) bool {
	return c.Status == models.CopyBorrowed && c.HolderID != nil && *c.HolderID == accountID
}

// Consistent checks the status/holder invariant of a copy.
func Consistent(c models.Copy) bool {
	switch c.Status {
	case models.CopyAvailable, models.CopyRemoved:
		return c.HolderID == nil && c.BorrowedAt == nil && c.DueAt == nil
	case models.CopyBorrowed:
		return c.HolderID != nil && c.BorrowedAt != nil && c.DueAt != nil
	default:
		return false
	}
}

func clearHolder(c models.Copy, status models.CopyStatus) models.Copy {
	c.Status = status
	c.HolderID = nil
	c.BorrowedAt = nil
	c.DueAt = nil
	return c
}
