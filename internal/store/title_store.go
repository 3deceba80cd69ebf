package store

import (
	"context"
	"fmt"
	"strings"

	"library/internal/models"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

type TitleStore struct {
	db DB
}

func NewTitleStore(db DB) *TitleStore {
	return &TitleStore{db: db}
}

// TitleListing is a catalog row with its current shelf stock.
type TitleListing struct {
	models.Title
	AvailableCopies int64 `db:"available_copies" json:"available_copies"`
}

type TitleFilter struct {
	Query         string
	CategoryID    string
	AvailableOnly bool
	Limit         int
	Offset        int
}

const titleColumns = `id, name, author, isbn, publisher, description, price, cost_per_day, category_id, created_at`

func (s *TitleStore) Create(ctx context.Context, tx Execer, title models.Title) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO titles (id, name, author, isbn, publisher, description, price, cost_per_day, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, title.ID, title.Name, title.Author, title.ISBN, title.Publisher, title.Description, title.Price, title.CostPerDay, title.CategoryID)
	return err
}

func (s *TitleStore) GetByID(ctx context.Context, titleID string) (models.Title, error) {
	return s.Get(ctx, s.db, titleID)
}

// Get reads a title through q, which may be the pool or an open transaction.
func (s *TitleStore) Get(ctx context.Context, q Getter, titleID string) (models.Title, error) {
	var row models.Title
	if err := q.GetContext(ctx, &row, `SELECT `+titleColumns+` FROM titles WHERE id = $1`, titleID); err != nil {
		return models.Title{}, err
	}
	return row, nil
}

func (s *TitleStore) UpdatePricing(ctx context.Context, tx Execer, titleID string, price, costPerDay int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE titles
		SET price = $1, cost_per_day = $2
		WHERE id = $3
	`, price, costPerDay, titleID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TitleStore) Delete(ctx context.Context, tx Execer, titleID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, titleID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Search builds the catalog query from whichever filters are set.
func (s *TitleStore) Search(ctx context.Context, filter TitleFilter) ([]TitleListing, error) {
	query, args, err := buildTitleSearch(filter)
	if err != nil {
		return nil, fmt.Errorf("building title search: %w", err)
	}
	rows := []TitleListing{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// likeEscaper neutralises LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildTitleSearch(filter TitleFilter) (string, []any, error) {
	available := goqu.L(`(SELECT COUNT(1) FROM copies c WHERE c.title_id = t.id AND c.status = 'available')`)
	ds := goqu.Dialect("postgres").
		From(goqu.T("titles").As("t")).
		Select(
			goqu.I("t.id"), goqu.I("t.name"), goqu.I("t.author"), goqu.I("t.isbn"),
			goqu.I("t.publisher"), goqu.I("t.description"), goqu.I("t.price"),
			goqu.I("t.cost_per_day"), goqu.I("t.category_id"), goqu.I("t.created_at"),
			available.As("available_copies"),
		).
		Prepared(true)

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("t.name").ILike(pattern),
			goqu.I("t.author").ILike(pattern),
			goqu.I("t.isbn").Eq(q),
		))
	}
	if filter.CategoryID != "" {
		ds = ds.Where(goqu.I("t.category_id").Eq(filter.CategoryID))
	}
	if filter.AvailableOnly {
		ds = ds.Where(goqu.L(`EXISTS (SELECT 1 FROM copies c WHERE c.title_id = t.id AND c.status = 'available')`))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	ds = ds.Order(goqu.I("t.name").Asc(), goqu.I("t.id").Asc()).
		Limit(uint(limit)).
		Offset(uint(offset))
	return ds.ToSQL()
}

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, tx Execer, category models.Category) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, category.ID, category.Name)
	return err
}

func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows := []models.Category{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, err
	}
	return rows, nil
}
