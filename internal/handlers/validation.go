package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"library/internal/money"
)

var errInvalidNumber = errors.New("invalid number")

// parsePrice accepts zero, unlike money.ParsePositiveMinor.
func parsePrice(raw string) (int64, error) {
	amount, err := money.ParseMinor(raw)
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, money.ErrInvalidAmount
	}
	return amount, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}
