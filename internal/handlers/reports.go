package handlers

import (
	"net/http"
	"strconv"

	"library/internal/money"
)

// MonthlySales requires both year and month.
func (h *Handler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_period")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_period")
		return
	}
	summary, err := h.reports.MonthlySales(r.Context(), year, month)
	if err != nil {
		respondServiceError(w, err, "report_failed")
		return
	}
	respondJSON(w, http.StatusOK, salesView{
		Year:    summary.Year,
		Month:   summary.Month,
		Count:   summary.Count,
		Revenue: money.FormatMinor(summary.Revenue),
	})
}
