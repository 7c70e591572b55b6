package services

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/types"
)

// MetricsProjector exposes the last known good model metrics. Reads come
// from an in-memory copy behind an RWMutex, so they never wait on a retrain;
// Refresh is called only by the retrain coordinator on success.
type MetricsProjector interface {
	Current(ctx context.Context) *types.ModelMetrics
	Refresh(ctx context.Context, metrics *types.ModelMetrics) error
}

type metricsProjector struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ModelMetricsRepo

	mu     sync.RWMutex
	latest *types.ModelMetrics
}

// NewMetricsProjector seeds the cache from the latest persisted row; when
// the table is empty it reports the untrained baseline.
func NewMetricsProjector(db *gorm.DB, baseLog *logger.Logger, repo repos.ModelMetricsRepo) (MetricsProjector, error) {
	log := baseLog.With("service", "MetricsProjector")
	latest, err := repo.GetLatest(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		log.Info("No persisted model metrics, starting from baseline")
		latest = &types.ModelMetrics{ModelVersion: "1.0.0"}
	}
	return &metricsProjector{db: db, log: log, repo: repo, latest: latest}, nil
}

func (mp *metricsProjector) Current(ctx context.Context) *types.ModelMetrics {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	copied := *mp.latest
	return &copied
}

func (mp *metricsProjector) Refresh(ctx context.Context, metrics *types.ModelMetrics) error {
	if metrics == nil {
		return nil
	}
	if _, err := mp.repo.Create(ctx, nil, metrics); err != nil {
		return err
	}
	mp.mu.Lock()
	mp.latest = metrics
	mp.mu.Unlock()
	mp.log.Info("Model metrics refreshed", "model_version", metrics.ModelVersion, "trained_on", metrics.TrainedOnDataCount)
	return nil
}
