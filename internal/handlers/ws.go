package handlers

import (
	"net/http"

	"library/internal/auth"
	"library/internal/money"
	"library/internal/websocket"
)

// WSCredits takes the token from the query string because browsers cannot
// set headers on a websocket handshake.
func (h *Handler) WSCredits(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	account, err := h.accounts.Get(r.Context(), claims.AccountID)
	if err != nil {
		respondServiceError(w, err, "account_lookup_failed")
		return
	}
	websocket.ServeCredits(w, r, h.hub, account.ID, websocket.CreditUpdate{
		AccountID: account.ID,
		Credits:   money.FormatMinor(account.Credits),
		Reason:    "snapshot",
	})
}
