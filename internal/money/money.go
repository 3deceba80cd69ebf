package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ParseMinor converts a decimal string such as "12.5" into cents.
func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(trimmed, "eE") {
		return 0, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	minor := value.Mul(hundred)
	if !minor.IsInteger() {
		return 0, ErrTooManyDecimals
	}
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

// ParsePositiveMinor is ParseMinor restricted to amounts above zero.
func ParsePositiveMinor(input string) (int64, error) {
	amount, err := ParseMinor(input)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

func FormatMinor(value int64) string {
	return decimal.New(value, -2).StringFixed(2)
}
