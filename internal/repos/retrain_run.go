package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/types"
)

type RetrainRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.RetrainRun) (*types.RetrainRun, error)
	GetLatest(ctx context.Context, tx *gorm.DB) (*types.RetrainRun, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type retrainRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRetrainRunRepo(db *gorm.DB, baseLog *logger.Logger) RetrainRunRepo {
	return &retrainRunRepo{db: db, log: baseLog.With("repo", "RetrainRunRepo")}
}

func (rr *retrainRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.RetrainRun) (*types.RetrainRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if run == nil {
		return nil, nil
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (rr *retrainRunRepo) GetLatest(ctx context.Context, tx *gorm.DB) (*types.RetrainRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var run types.RetrainRun
	err := transaction.WithContext(ctx).
		Order("started_at DESC").
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (rr *retrainRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.RetrainRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}
