package services

import (
	"context"
	"fmt"
	"strings"

	"library/internal/db"
	"library/internal/lending"
	"library/internal/models"
	"library/internal/store"
	"library/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CatalogService struct {
	txRunner   db.TxRunner
	titles     TitleStore
	categories CategoryStore
	copies     CopyStore
	loans      LoanStore
	reviews    ReviewStore
	audit      AuditStore
}

func NewCatalogService(txRunner db.TxRunner, titles TitleStore, categories CategoryStore, copies CopyStore, loans LoanStore, reviews ReviewStore, audit AuditStore) *CatalogService {
	return &CatalogService{
		txRunner:   txRunner,
		titles:     titles,
		categories: categories,
		copies:     copies,
		loans:      loans,
		reviews:    reviews,
		audit:      audit,
	}
}

type NewTitleRequest struct {
	Name        string
	Author      string
	ISBN        string
	Publisher   string
	Description string
	Price       int64
	CostPerDay  int64
	CategoryID  *string
	Copies      int
}

type TitleDetail struct {
	models.Title
	AvailableCopies int64               `json:"available_copies"`
	Rating          store.RatingSummary `json:"rating"`
}

func (s *CatalogService) AddTitle(ctx context.Context, actorID string, req NewTitleRequest) (models.Title, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Author = strings.TrimSpace(req.Author)
	if req.Name == "" || req.Author == "" {
		return models.Title{}, ErrInvalidTitle
	}
	if err := validator.ValidateISBN(req.ISBN); err != nil {
		return models.Title{}, ErrInvalidTitle
	}
	if req.Price < 0 || req.CostPerDay < 0 {
		return models.Title{}, lending.ErrInvalidAmount
	}
	if req.Copies < 1 {
		return models.Title{}, ErrInvalidQuantity
	}
	if req.CategoryID != nil && *req.CategoryID == "" {
		req.CategoryID = nil
	}
	title := models.Title{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Author:      req.Author,
		ISBN:        validator.NormalizeISBN(req.ISBN),
		Publisher:   strings.TrimSpace(req.Publisher),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		CostPerDay:  req.CostPerDay,
		CategoryID:  req.CategoryID,
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.titles.Create(ctx, tx, title); err != nil {
			return err
		}
		if err := s.copies.CreateMany(ctx, tx, title.ID, newCopyIDs(req.Copies)); err != nil {
			return fmt.Errorf("creating copies: %w", err)
		}
		return s.audit.Log(ctx, tx, actorID, "catalog.title_added", "title", title.ID, auditData(map[string]any{
			"isbn":   title.ISBN,
			"copies": req.Copies,
		}))
	})
	if db.IsUniqueViolation(err) {
		return models.Title{}, ErrDuplicate
	}
	if err != nil {
		return models.Title{}, err
	}
	return title, nil
}

func (s *CatalogService) UpdatePricing(ctx context.Context, actorID, titleID string, price, costPerDay int64) error {
	if price < 0 || costPerDay < 0 {
		return lending.ErrInvalidAmount
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.titles.UpdatePricing(ctx, tx, titleID, price, costPerDay)
		if err != nil {
			return fmt.Errorf("updating pricing: %w", err)
		}
		if rows == 0 {
			return lending.ErrNotFound
		}
		return s.audit.Log(ctx, tx, actorID, "catalog.pricing_updated", "title", titleID, auditData(map[string]any{
			"price":        price,
			"cost_per_day": costPerDay,
		}))
	})
}

// AddCopies puts n new available copies of a title on the shelf.
func (s *CatalogService) AddCopies(ctx context.Context, actorID, titleID string, n int) ([]string, error) {
	if n < 1 {
		return nil, ErrInvalidQuantity
	}
	ids := newCopyIDs(n)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.titles.Get(ctx, tx, titleID); err != nil {
			return notFound(err, "loading title")
		}
		if err := s.copies.CreateMany(ctx, tx, titleID, ids); err != nil {
			return fmt.Errorf("creating copies: %w", err)
		}
		return s.audit.Log(ctx, tx, actorID, "catalog.copies_added", "title", titleID, auditData(map[string]any{
			"count": n,
		}))
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RemoveCopies retires up to n available copies and reports how many went.
// Borrowed copies are left alone, so the count can be lower than n.
func (s *CatalogService) RemoveCopies(ctx context.Context, actorID, titleID string, n int) (int64, error) {
	if n < 1 {
		return 0, ErrInvalidQuantity
	}
	var removed int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.titles.Get(ctx, tx, titleID); err != nil {
			return notFound(err, "loading title")
		}
		count, err := s.copies.RemoveAvailable(ctx, tx, titleID, n)
		if err != nil {
			return fmt.Errorf("removing copies: %w", err)
		}
		removed = count
		return s.audit.Log(ctx, tx, actorID, "catalog.copies_removed", "title", titleID, auditData(map[string]any{
			"requested": n,
			"removed":   count,
		}))
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// DeleteTitle removes a title with its loans, copies, ratings and comments.
// Purchase records carry their own snapshot and are kept.
func (s *CatalogService) DeleteTitle(ctx context.Context, actorID, titleID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		title, err := s.titles.Get(ctx, tx, titleID)
		if err != nil {
			return notFound(err, "loading title")
		}
		if err := s.loans.DeleteByTitle(ctx, tx, titleID); err != nil {
			return fmt.Errorf("deleting loans: %w", err)
		}
		if err := s.copies.DeleteByTitle(ctx, tx, titleID); err != nil {
			return fmt.Errorf("deleting copies: %w", err)
		}
		if err := s.reviews.DeleteByTitle(ctx, tx, titleID); err != nil {
			return fmt.Errorf("deleting reviews: %w", err)
		}
		rows, err := s.titles.Delete(ctx, tx, titleID)
		if err != nil {
			return fmt.Errorf("deleting title: %w", err)
		}
		if rows == 0 {
			return lending.ErrNotFound
		}
		return s.audit.Log(ctx, tx, actorID, "catalog.title_deleted", "title", titleID, auditData(map[string]any{
			"name": title.Name,
			"isbn": title.ISBN,
		}))
	})
}

func (s *CatalogService) Search(ctx context.Context, filter store.TitleFilter) ([]store.TitleListing, error) {
	rows, err := s.titles.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("searching titles: %w", err)
	}
	return rows, nil
}

func (s *CatalogService) GetTitle(ctx context.Context, titleID string) (TitleDetail, error) {
	title, err := s.titles.GetByID(ctx, titleID)
	if err != nil {
		return TitleDetail{}, notFound(err, "loading title")
	}
	available, err := s.copies.CountAvailable(ctx, titleID)
	if err != nil {
		return TitleDetail{}, fmt.Errorf("counting copies: %w", err)
	}
	rating, err := s.reviews.RatingSummary(ctx, titleID)
	if err != nil {
		return TitleDetail{}, fmt.Errorf("loading rating: %w", err)
	}
	return TitleDetail{Title: title, AvailableCopies: available, Rating: rating}, nil
}

func (s *CatalogService) ListCopies(ctx context.Context, titleID string) ([]models.Copy, error) {
	if _, err := s.titles.GetByID(ctx, titleID); err != nil {
		return nil, notFound(err, "loading title")
	}
	return s.copies.ListByTitle(ctx, titleID)
}

func (s *CatalogService) CopyHistory(ctx context.Context, copyID string) ([]store.LoanHistoryRow, error) {
	if _, err := s.copies.GetByID(ctx, copyID); err != nil {
		return nil, notFound(err, "loading copy")
	}
	rows, err := s.loans.ListByCopy(ctx, copyID)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	return rows, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actorID, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return models.Category{}, ErrInvalidCategory
	}
	category := models.Category{ID: uuid.NewString(), Name: name}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.categories.Create(ctx, tx, category); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "catalog.category_added", "category", category.ID, auditData(map[string]any{
			"name": name,
		}))
	})
	if db.IsUniqueViolation(err) {
		return models.Category{}, ErrDuplicate
	}
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func newCopyIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return ids
}
