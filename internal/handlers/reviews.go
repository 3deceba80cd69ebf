package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type commentRequest struct {
	Content string `json:"content"`
}

type ratingRequest struct {
	Score int `json:"score"`
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	comment, err := h.reviews.AddComment(r.Context(), principal(r).AccountID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondServiceError(w, err, "add_comment_failed")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reviews.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "list_comments_failed")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.DeleteComment(r.Context(), principal(r).AccountID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err, "delete_comment_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	summary, err := h.reviews.Rate(r.Context(), principal(r).AccountID, chi.URLParam(r, "id"), req.Score)
	if err != nil {
		respondServiceError(w, err, "rate_failed")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
