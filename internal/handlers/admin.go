package handlers

import (
	"net/http"

	"library/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateLibrarian(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	account, err := h.accounts.CreateStaff(r.Context(), principal(r).AccountID, services.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, err, "create_librarian_failed")
		return
	}
	respondJSON(w, http.StatusCreated, newAccountView(account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteAccount(r.Context(), principal(r).AccountID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err, "delete_account_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit == 0 || limit > 200 {
		respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	rows, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err, "list_audit_failed")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
