package handlers

import (
	"net/http"

	"library/internal/money"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) IssueTitle(w http.ResponseWriter, r *http.Request) {
	issued, err := h.lending.Issue(r.Context(), chi.URLParam(r, "id"), principal(r).AccountID)
	if err != nil {
		respondServiceError(w, err, "issue_failed")
		return
	}
	respondJSON(w, http.StatusCreated, issued)
}

func (h *Handler) ReturnCopy(w http.ResponseWriter, r *http.Request) {
	res, err := h.lending.Return(r.Context(), chi.URLParam(r, "id"), principal(r).AccountID)
	if err != nil {
		respondServiceError(w, err, "return_failed")
		return
	}
	respondJSON(w, http.StatusOK, returnView{
		Copy:    res.Copy,
		Refund:  money.FormatMinor(res.Refund),
		Credits: money.FormatMinor(res.Credits),
	})
}

func (h *Handler) PurchaseTitle(w http.ResponseWriter, r *http.Request) {
	res, err := h.lending.Sell(r.Context(), chi.URLParam(r, "id"), principal(r).AccountID)
	if err != nil {
		respondServiceError(w, err, "purchase_failed")
		return
	}
	respondJSON(w, http.StatusCreated, newSaleView(res))
}

// PurchaseCopy buys the copy the caller is currently borrowing.
func (h *Handler) PurchaseCopy(w http.ResponseWriter, r *http.Request) {
	res, err := h.lending.SellBorrowed(r.Context(), chi.URLParam(r, "id"), principal(r).AccountID)
	if err != nil {
		respondServiceError(w, err, "purchase_failed")
		return
	}
	respondJSON(w, http.StatusCreated, newSaleView(res))
}

func (h *Handler) ForceReturn(w http.ResponseWriter, r *http.Request) {
	returned, err := h.lending.ForceReturn(r.Context(), principal(r).AccountID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "force_return_failed")
		return
	}
	respondJSON(w, http.StatusOK, returned)
}

func (h *Handler) MyBooks(w http.ResponseWriter, r *http.Request) {
	due, err := h.lending.AmountDue(r.Context(), principal(r).AccountID)
	if err != nil {
		respondServiceError(w, err, "list_books_failed")
		return
	}
	respondJSON(w, http.StatusOK, newDueView(due))
}
