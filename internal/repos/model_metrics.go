package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/types"
)

type ModelMetricsRepo interface {
	Create(ctx context.Context, tx *gorm.DB, metrics *types.ModelMetrics) (*types.ModelMetrics, error)
	GetLatest(ctx context.Context, tx *gorm.DB) (*types.ModelMetrics, error)
}

type modelMetricsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelMetricsRepo(db *gorm.DB, baseLog *logger.Logger) ModelMetricsRepo {
	return &modelMetricsRepo{db: db, log: baseLog.With("repo", "ModelMetricsRepo")}
}

func (mr *modelMetricsRepo) Create(ctx context.Context, tx *gorm.DB, metrics *types.ModelMetrics) (*types.ModelMetrics, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if metrics == nil {
		return nil, nil
	}
	if metrics.ID == uuid.Nil {
		metrics.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}

func (mr *modelMetricsRepo) GetLatest(ctx context.Context, tx *gorm.DB) (*types.ModelMetrics, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var metrics types.ModelMetrics
	err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(1).
		Find(&metrics).Error
	if err != nil {
		return nil, err
	}
	if metrics.ID == uuid.Nil {
		return nil, nil
	}
	return &metrics, nil
}
