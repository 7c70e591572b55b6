package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/types"
)

// FeedbackRepo is append-only: there is deliberately no update or delete.
// Listing orders by (created_at, id) so same-timestamp rows keep insertion
// order.
type FeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.Feedback) ([]*types.Feedback, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Feedback, error)
	ListAllWithUser(ctx context.Context, tx *gorm.DB) ([]*types.Feedback, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Feedback, error)
	CountForUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) (int64, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: baseLog.With("repo", "FeedbackRepo")}
}

func (fr *feedbackRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.Feedback) ([]*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if len(entries) == 0 {
		return []*types.Feedback{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (fr *feedbackRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Feedback
	if err := transaction.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *feedbackRepo) ListAllWithUser(ctx context.Context, tx *gorm.DB) ([]*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Feedback
	if err := transaction.WithContext(ctx).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *feedbackRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Feedback
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CountForUserSince uses a strict > so an entry exactly at the cutoff no
// longer counts against the rolling window.
func (fr *feedbackRepo) CountForUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Feedback{}).
		Where("user_id = ? AND created_at > ?", userID, cutoff).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (fr *feedbackRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Feedback{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
