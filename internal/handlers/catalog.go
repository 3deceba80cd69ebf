package handlers

import (
	"net/http"
	"strings"

	"library/internal/services"
	"library/internal/store"

	"github.com/go-chi/chi/v5"
)

type createTitleRequest struct {
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	ISBN        string  `json:"isbn"`
	Publisher   string  `json:"publisher"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	CostPerDay  string  `json:"cost_per_day"`
	CategoryID  *string `json:"category_id"`
	Copies      int     `json:"copies"`
}

type pricingRequest struct {
	Price      string `json:"price"`
	CostPerDay string `json:"cost_per_day"`
}

type copiesRequest struct {
	Count int `json:"count"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	query := r.URL.Query()
	rows, err := h.catalog.Search(r.Context(), store.TitleFilter{
		Query:         strings.TrimSpace(query.Get("q")),
		CategoryID:    query.Get("category"),
		AvailableOnly: query.Get("available") == "true",
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		respondServiceError(w, err, "search_failed")
		return
	}
	out := make([]listingView, 0, len(rows))
	for _, row := range rows {
		out = append(out, listingView{titleView: newTitleView(row.Title), AvailableCopies: row.AvailableCopies})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetTitle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "title_lookup_failed")
		return
	}
	respondJSON(w, http.StatusOK, titleDetailView{
		titleView:       newTitleView(detail.Title),
		AvailableCopies: detail.AvailableCopies,
		Rating:          detail.Rating,
	})
}

func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req createTitleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		respondServiceError(w, err, "create_title_failed")
		return
	}
	costPerDay, err := parsePrice(req.CostPerDay)
	if err != nil {
		respondServiceError(w, err, "create_title_failed")
		return
	}
	title, err := h.catalog.AddTitle(r.Context(), principal(r).AccountID, services.NewTitleRequest{
		Name:        req.Name,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Publisher:   req.Publisher,
		Description: req.Description,
		Price:       price,
		CostPerDay:  costPerDay,
		CategoryID:  req.CategoryID,
		Copies:      req.Copies,
	})
	if err != nil {
		respondServiceError(w, err, "create_title_failed")
		return
	}
	respondJSON(w, http.StatusCreated, newTitleView(title))
}

func (h *Handler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		respondServiceError(w, err, "update_pricing_failed")
		return
	}
	costPerDay, err := parsePrice(req.CostPerDay)
	if err != nil {
		respondServiceError(w, err, "update_pricing_failed")
		return
	}
	if err := h.catalog.UpdatePricing(r.Context(), principal(r).AccountID, chi.URLParam(r, "id"), price, costPerDay); err != nil {
		respondServiceError(w, err, "update_pricing_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) AddCopies(w http.ResponseWriter, r *http.Request) {
	var req copiesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	ids, err := h.catalog.AddCopies(r.Context(), principal(r).AccountID, chi.URLParam(r, "id"), req.Count)
	if err != nil {
		respondServiceError(w, err, "add_copies_failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"copy_ids": ids})
}

func (h *Handler) RemoveCopies(w http.ResponseWriter, r *http.Request) {
	var req copiesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	removed, err := h.catalog.RemoveCopies(r.Context(), principal(r).AccountID, chi.URLParam(r, "id"), req.Count)
	if err != nil {
		respondServiceError(w, err, "remove_copies_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteTitle(r.Context(), principal(r).AccountID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err, "delete_title_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CopyHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.catalog.CopyHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "copy_history_failed")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, err, "list_categories_failed")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), principal(r).AccountID, req.Name)
	if err != nil {
		respondServiceError(w, err, "create_category_failed")
		return
	}
	respondJSON(w, http.StatusCreated, category)
}
