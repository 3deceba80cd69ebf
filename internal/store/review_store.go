package store

import (
	"context"

	"library/internal/models"
)

type ReviewStore struct {
	db DB
}

func NewReviewStore(db DB) *ReviewStore {
	return &ReviewStore{db: db}
}

type RatingSummary struct {
	TitleID string  `db:"title_id" json:"title_id"`
	Average float64 `db:"average" json:"average"`
	Count   int64   `db:"rating_count" json:"count"`
}

func (s *ReviewStore) AddComment(ctx context.Context, tx Execer, comment models.Comment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO comments (id, account_id, title_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.AccountID, comment.TitleID, comment.Content, comment.CreatedAt)
	return err
}

func (s *ReviewStore) ListComments(ctx context.Context, titleID string) ([]models.Comment, error) {
	rows := []models.Comment{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.account_id, a.username, c.title_id, c.content, c.created_at
		FROM comments c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.title_id = $1
		ORDER BY c.created_at DESC
	`, titleID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ReviewStore) DeleteComment(ctx context.Context, tx Execer, commentID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertRating keeps one rating per account and title; rating again
// replaces the score.
func (s *ReviewStore) UpsertRating(ctx context.Context, tx Execer, rating models.Rating) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ratings (id, account_id, title_id, score, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, title_id)
		DO UPDATE SET score = EXCLUDED.score, created_at = EXCLUDED.created_at
	`, rating.ID, rating.AccountID, rating.TitleID, rating.Score, rating.CreatedAt)
	return err
}

func (s *ReviewStore) RatingSummary(ctx context.Context, titleID string) (RatingSummary, error) {
	row := RatingSummary{TitleID: titleID}
	err := s.db.GetContext(ctx, &row, `
		SELECT $1::text AS title_id, COALESCE(AVG(score), 0)::float8 AS average, COUNT(1) AS rating_count
		FROM ratings
		WHERE title_id = $1
	`, titleID)
	if err != nil {
		return RatingSummary{}, err
	}
	return row, nil
}

func (s *ReviewStore) DeleteByAccount(ctx context.Context, tx Execer, accountID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE account_id = $1`, accountID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE account_id = $1`, accountID)
	return err
}

func (s *ReviewStore) DeleteByTitle(ctx context.Context, tx Execer, titleID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE title_id = $1`, titleID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE title_id = $1`, titleID)
	return err
}
