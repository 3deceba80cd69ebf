package lending

import "math"

// TopUp adds a strictly positive amount to a balance.
func TopUp(balance, amount int64) (int64, error) {
	if amount <= 0 || amount > math.MaxInt64-balance {
		return balance, ErrInvalidAmount
	}
	return balance + amount, nil
}

// Debit subtracts amount, refusing to take the balance below zero.
func Debit(balance, amount int64) (int64, error) {
	if amount < 0 {
		return balance, ErrInvalidAmount
	}
	if balance < amount {
		return balance, ErrInsufficientCredits
	}
	return balance - amount, nil
}

// Credit adds a refund. Zero is allowed and leaves the balance unchanged.
func Credit(balance, amount int64) (int64, error) {
	if amount < 0 || amount > math.MaxInt64-balance {
		return balance, ErrInvalidAmount
	}
	return balance + amount, nil
}
