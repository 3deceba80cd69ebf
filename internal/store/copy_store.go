package store

import (
	"context"
	"time"

	"library/internal/models"
)

type CopyStore struct {
	db DB
}

func NewCopyStore(db DB) *CopyStore {
	return &CopyStore{db: db}
}

// BorrowedCopy is a copy on loan joined with the title it belongs to.
type BorrowedCopy struct {
	CopyID     string    `db:"copy_id" json:"copy_id"`
	TitleID    string    `db:"title_id" json:"title_id"`
	TitleName  string    `db:"title_name" json:"title_name"`
	Author     string    `db:"author" json:"author"`
	CostPerDay int64     `db:"cost_per_day" json:"cost_per_day"`
	BorrowedAt time.Time `db:"borrowed_at" json:"borrowed_at"`
	DueAt      time.Time `db:"due_at" json:"due_at"`
}

const copyColumns = `id, title_id, status, holder_id, borrowed_at, due_at`

func (s *CopyStore) CreateMany(ctx context.Context, tx Execer, titleID string, ids []string) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO copies (id, title_id, status)
			VALUES ($1, $2, 'available')
		`, id, titleID); err != nil {
			return err
		}
	}
	return nil
}

func (s *CopyStore) GetByID(ctx context.Context, copyID string) (models.Copy, error) {
	var row models.Copy
	if err := s.db.GetContext(ctx, &row, `SELECT `+copyColumns+` FROM copies WHERE id = $1`, copyID); err != nil {
		return models.Copy{}, err
	}
	return row, nil
}

func (s *CopyStore) GetForUpdate(ctx context.Context, tx Getter, copyID string) (models.Copy, error) {
	var row models.Copy
	err := tx.GetContext(ctx, &row, `
		SELECT `+copyColumns+`
		FROM copies
		WHERE id = $1
		FOR UPDATE
	`, copyID)
	if err != nil {
		return models.Copy{}, err
	}
	return row, nil
}

// PickAvailableForUpdate locks the lowest-id shelf copy of a title. A
// concurrent issue holding that copy blocks the caller until it commits.
func (s *CopyStore) PickAvailableForUpdate(ctx context.Context, tx Getter, titleID string) (models.Copy, error) {
	var row models.Copy
	err := tx.GetContext(ctx, &row, `
		SELECT `+copyColumns+`
		FROM copies
		WHERE title_id = $1 AND status = 'available'
		ORDER BY id
		LIMIT 1
		FOR UPDATE
	`, titleID)
	if err != nil {
		return models.Copy{}, err
	}
	return row, nil
}

func (s *CopyStore) HasBorrowed(ctx context.Context, tx Getter, titleID, accountID string) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM copies
			WHERE title_id = $1 AND holder_id = $2 AND status = 'borrowed'
		)
	`, titleID, accountID)
	return exists, err
}

// Update writes the lifecycle fields of a copy back to its row.
func (s *CopyStore) Update(ctx context.Context, tx Execer, c models.Copy) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE copies
		SET status = $1, holder_id = $2, borrowed_at = $3, due_at = $4
		WHERE id = $5
	`, c.Status, c.HolderID, c.BorrowedAt, c.DueAt, c.ID)
	return err
}

func (s *CopyStore) CountAvailable(ctx context.Context, titleID string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM copies
		WHERE title_id = $1 AND status = 'available'
	`, titleID)
	return count, err
}

func (s *CopyStore) ListByTitle(ctx context.Context, titleID string) ([]models.Copy, error) {
	rows := []models.Copy{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+copyColumns+`
		FROM copies
		WHERE title_id = $1 AND status <> 'removed'
		ORDER BY id
	`, titleID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CopyStore) ListBorrowedByHolder(ctx context.Context, accountID string) ([]BorrowedCopy, error) {
	rows := []BorrowedCopy{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id AS copy_id, t.id AS title_id, t.name AS title_name, t.author,
		       t.cost_per_day, c.borrowed_at, c.due_at
		FROM copies c
		JOIN titles t ON t.id = c.title_id
		WHERE c.holder_id = $1 AND c.status = 'borrowed'
		ORDER BY c.due_at, c.id
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReleaseAllHeldBy puts every copy held by the account back on the shelf.
func (s *CopyStore) ReleaseAllHeldBy(ctx context.Context, tx Execer, accountID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE copies
		SET status = 'available', holder_id = NULL, borrowed_at = NULL, due_at = NULL
		WHERE holder_id = $1 AND status = 'borrowed'
	`, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RemoveAvailable retires up to n shelf copies, lowest id first, and
// reports how many were retired. Borrowed copies are never touched.
func (s *CopyStore) RemoveAvailable(ctx context.Context, tx Execer, titleID string, n int) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE copies
		SET status = 'removed'
		WHERE id IN (
			SELECT id FROM copies
			WHERE title_id = $1 AND status = 'available'
			ORDER BY id
			LIMIT $2
			FOR UPDATE
		)
	`, titleID, n)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *CopyStore) DeleteByTitle(ctx context.Context, tx Execer, titleID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM copies WHERE title_id = $1`, titleID)
	return err
}
