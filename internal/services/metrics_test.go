package services

import (
	"context"
	"testing"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/types"
)

func TestMetricsProjectorSeedsFromStore(t *testing.T) {
	gdb := testDB(t)
	log := logger.NewNop()
	metricsRepo := repos.NewModelMetricsRepo(gdb, log)

	projector, err := NewMetricsProjector(gdb, log, metricsRepo)
	if err != nil {
		t.Fatalf("NewMetricsProjector: %v", err)
	}
	if got := projector.Current(context.Background()); got.ModelVersion != "1.0.0" {
		t.Fatalf("baseline modelVersion=%q, want 1.0.0", got.ModelVersion)
	}

	refreshed := &types.ModelMetrics{
		ModelVersion:       "3.1.0",
		Accuracy:           0.93,
		Precision:          0.92,
		Recall:             0.9,
		F1Score:            0.91,
		TrainedOnDataCount: 42,
	}
	if err := projector.Refresh(context.Background(), refreshed); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := projector.Current(context.Background()); got.ModelVersion != "3.1.0" || got.TrainedOnDataCount != 42 {
		t.Fatalf("Current=%+v, want refreshed values", got)
	}

	// A fresh projector over the same store picks up the persisted row.
	again, err := NewMetricsProjector(gdb, log, metricsRepo)
	if err != nil {
		t.Fatalf("NewMetricsProjector (second): %v", err)
	}
	if got := again.Current(context.Background()); got.ModelVersion != "3.1.0" {
		t.Fatalf("reloaded modelVersion=%q, want 3.1.0", got.ModelVersion)
	}
}
