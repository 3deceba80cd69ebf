// Package lending holds the rules of the copy lifecycle and the credit
// balance: state transitions, loan pricing, balance arithmetic and the role
// permission table. It performs no I/O; the services package applies these
// rules inside database transactions.
package lending

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyBorrowed     = errors.New("account already holds a borrowed copy of this title")
	ErrOutOfStock          = errors.New("no available copy")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("not permitted")
	ErrOverdue             = errors.New("loan exceeded the prepaid period")
	ErrInvalidTransition   = errors.New("invalid copy state transition")
)

// ErrNotBorrowed is returned for a copy that is not on loan at all. It
// matches ErrUnauthorized.
var ErrNotBorrowed = fmt.Errorf("copy is not borrowed: %w", ErrUnauthorized)
