package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"library/internal/db"
	"library/internal/lending"
	"library/internal/models"
	"library/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxCommentLength = 2000

type ReviewService struct {
	txRunner db.TxRunner
	titles   TitleStore
	reviews  ReviewStore
	audit    AuditStore
	clock    lending.Clock
}

func NewReviewService(txRunner db.TxRunner, titles TitleStore, reviews ReviewStore, audit AuditStore, clock lending.Clock) *ReviewService {
	if clock == nil {
		clock = lending.SystemClock{}
	}
	return &ReviewService{
		txRunner: txRunner,
		titles:   titles,
		reviews:  reviews,
		audit:    audit,
		clock:    clock,
	}
}

func (s *ReviewService) AddComment(ctx context.Context, accountID, titleID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxCommentLength {
		return models.Comment{}, ErrInvalidComment
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		AccountID: accountID,
		TitleID:   titleID,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.titles.Get(ctx, tx, titleID); err != nil {
			return notFound(err, "loading title")
		}
		return s.reviews.AddComment(ctx, tx, comment)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID string) ([]models.Comment, error) {
	rows, err := s.reviews.ListComments(ctx, titleID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return rows, nil
}

// DeleteComment is the moderation path for admins.
func (s *ReviewService) DeleteComment(ctx context.Context, actorID, commentID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.reviews.DeleteComment(ctx, tx, commentID)
		if err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}
		if rows == 0 {
			return lending.ErrNotFound
		}
		return s.audit.Log(ctx, tx, actorID, "review.comment_deleted", "comment", commentID, "{}")
	})
}

// Rate records a 1..5 score. Rating the same title again replaces the
// earlier score.
func (s *ReviewService) Rate(ctx context.Context, accountID, titleID string, score int) (store.RatingSummary, error) {
	if score < 1 || score > 5 {
		return store.RatingSummary{}, ErrInvalidRating
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.titles.Get(ctx, tx, titleID); err != nil {
			return notFound(err, "loading title")
		}
		return s.reviews.UpsertRating(ctx, tx, models.Rating{
			ID:        uuid.NewString(),
			AccountID: accountID,
			TitleID:   titleID,
			Score:     score,
			CreatedAt: s.clock.Now(),
		})
	})
	if err != nil {
		return store.RatingSummary{}, err
	}
	return s.reviews.RatingSummary(ctx, titleID)
}
