package handlers

import (
	"net/http"

	"library/internal/auth"
	"library/internal/middleware"
	"library/internal/models"
	"library/internal/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string      `json:"token"`
	Account accountView `json:"account"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	account, err := h.accounts.Register(r.Context(), services.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, err, "registration_failed")
		return
	}
	h.respondToken(w, http.StatusCreated, account)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	account, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err, "login_failed")
		return
	}
	h.respondToken(w, http.StatusOK, account)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.Get(r.Context(), principal.AccountID)
	if err != nil {
		respondServiceError(w, err, "account_lookup_failed")
		return
	}
	respondJSON(w, http.StatusOK, newAccountView(account))
}

func (h *Handler) respondToken(w http.ResponseWriter, status int, account models.Account) {
	token, err := auth.GenerateToken(h.cfg.JWTSecret, account.ID, account.Role, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, status, tokenResponse{Token: token, Account: newAccountView(account)})
}

// principal is only called behind middleware.Auth.
func principal(r *http.Request) middleware.Principal {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p
}
