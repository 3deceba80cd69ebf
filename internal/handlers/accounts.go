package handlers

import (
	"net/http"

	"library/internal/export"
	"library/internal/models"
	"library/internal/money"

	"github.com/go-chi/chi/v5"
)

type topUpRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := money.ParsePositiveMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	accountID := chi.URLParam(r, "id")
	credits, err := h.ledger.TopUp(r.Context(), principal(r).AccountID, accountID, amount)
	if err != nil {
		respondServiceError(w, err, "top_up_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"account_id": accountID,
		"credits":    money.FormatMinor(credits),
	})
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = models.RoleUser
	}
	rows, err := h.accounts.ListByRole(r.Context(), role)
	if err != nil {
		respondServiceError(w, err, "list_accounts_failed")
		return
	}
	out := make([]accountView, 0, len(rows))
	for _, row := range rows {
		out = append(out, newAccountView(row))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) AccountPurchases(w http.ResponseWriter, r *http.Request) {
	account, rows, err := h.reports.Purchases(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "list_purchases_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account":   newAccountView(account),
		"purchases": newPurchaseViews(rows),
	})
}

func (h *Handler) AccountLoans(w http.ResponseWriter, r *http.Request) {
	account, rows, err := h.reports.Loans(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "list_loans_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account": newAccountView(account),
		"loans":   rows,
	})
}

func (h *Handler) AccountPurchasesCSV(w http.ResponseWriter, r *http.Request) {
	account, rows, err := h.reports.Purchases(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "export_failed")
		return
	}
	setCSVHeaders(w, export.Filename(account, "purchases", h.now()))
	_ = export.Purchases(w, account, rows)
}

func (h *Handler) AccountLoansCSV(w http.ResponseWriter, r *http.Request) {
	account, rows, err := h.reports.Loans(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "export_failed")
		return
	}
	setCSVHeaders(w, export.Filename(account, "loans", h.now()))
	_ = export.Loans(w, account, rows)
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
}
