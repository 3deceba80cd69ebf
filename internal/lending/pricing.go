package lending

import "time"

const day = 24 * time.Hour

// ElapsedDays counts whole days between borrowedAt and now, floored, never
// less than one. A same-day return is billed as one day.
func ElapsedDays(borrowedAt, now time.Time) int64 {
	days := int64(now.Sub(borrowedAt) / day)
	if days < 1 {
		return 1
	}
	return days
}

// PeriodDays is the loan period expressed in whole days.
func PeriodDays(period time.Duration) int64 {
	return int64(period / day)
}

// Refund is the unused part of the prepaid loan period. It fails with
// ErrOverdue once the whole period has elapsed, whatever the daily cost.
func Refund(borrowedAt, now time.Time, period time.Duration, costPerDay int64) (int64, error) {
	elapsed := ElapsedDays(borrowedAt, now)
	if Overdue(borrowedAt, now, period) {
		return 0, ErrOverdue
	}
	return (PeriodDays(period) - elapsed) * costPerDay, nil
}

// Overdue reports whether a loan has used up its prepaid period.
func Overdue(borrowedAt, now time.Time, period time.Duration) bool {
	return ElapsedDays(borrowedAt, now) >= PeriodDays(period)
}

// AccruedCharge is the running cost of an open loan.
func AccruedCharge(borrowedAt, now time.Time, costPerDay int64) int64 {
	return ElapsedDays(borrowedAt, now) * costPerDay
}
