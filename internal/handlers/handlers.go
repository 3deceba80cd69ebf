package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"library/internal/lending"
	"library/internal/money"
	"library/internal/services"
	"library/internal/validator"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type errorCode struct {
	err    error
	status int
	code   string
}

// Ordered: ErrNotBorrowed wraps ErrUnauthorized and must not be reported
// as a missing row.
var errorCodes = []errorCode{
	{lending.ErrAlreadyBorrowed, http.StatusConflict, "already_borrowed"},
	{lending.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
	{lending.ErrInsufficientCredits, http.StatusBadRequest, "insufficient_credits"},
	{lending.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{money.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{money.ErrTooManyDecimals, http.StatusBadRequest, "invalid_amount"},
	{lending.ErrNotFound, http.StatusNotFound, "not_found"},
	{lending.ErrUnauthorized, http.StatusForbidden, "forbidden"},
	{lending.ErrOverdue, http.StatusConflict, "overdue_inconsistency"},
	{services.ErrNotOverdue, http.StatusConflict, "not_overdue"},
	{services.ErrDuplicate, http.StatusConflict, "duplicate"},
	{services.ErrProtectedAccount, http.StatusForbidden, "protected_account"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{services.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{services.ErrInvalidTitle, http.StatusBadRequest, "invalid_title"},
	{services.ErrInvalidCategory, http.StatusBadRequest, "invalid_category"},
	{services.ErrInvalidComment, http.StatusBadRequest, "invalid_comment"},
	{services.ErrInvalidRating, http.StatusBadRequest, "invalid_rating"},
	{services.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{services.ErrInvalidPeriod, http.StatusBadRequest, "invalid_period"},
	{validator.ErrInvalidUsername, http.StatusBadRequest, "invalid_username"},
	{validator.ErrInvalidEmail, http.StatusBadRequest, "invalid_email"},
	{validator.ErrInvalidPassword, http.StatusBadRequest, "invalid_password"},
	{validator.ErrInvalidISBN, http.StatusBadRequest, "invalid_isbn"},
}

// respondServiceError maps a service error to its status and code. Errors
// with no mapping are logged and reported as fallback.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			respondError(w, ec.status, ec.code)
			return
		}
	}
	log.Printf("%s: %v", fallback, err)
	respondError(w, http.StatusInternalServerError, fallback)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}
