package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/types"
)

// RetrainCoordinator serializes model retraining: at most one run is in
// flight process-wide. A request that arrives while the slot is held fails
// with ErrRetrainInProgress; nothing is queued.
//
// Slot reset policy: the slot frees the moment a run reaches a terminal
// state. Status keeps reporting the last terminal run, including its error,
// until the next run starts.
type RetrainCoordinator interface {
	Request(ctx context.Context) (*types.RetrainRun, error)
	Status(ctx context.Context) *types.RetrainRun
}

type retrainCoordinator struct {
	db           *gorm.DB
	log          *logger.Logger
	runRepo      repos.RetrainRunRepo
	userRepo     repos.UserRepo
	feedbackRepo repos.FeedbackRepo
	model        ModelClient
	projector    MetricsProjector

	// mu guards only the slot state. The trainer call runs outside it so a
	// long training job never blocks Status or the conflict check.
	mu      sync.Mutex
	running bool
	current *types.RetrainRun
}

func NewRetrainCoordinator(
	db *gorm.DB,
	baseLog *logger.Logger,
	runRepo repos.RetrainRunRepo,
	userRepo repos.UserRepo,
	feedbackRepo repos.FeedbackRepo,
	model ModelClient,
	projector MetricsProjector,
) RetrainCoordinator {
	return &retrainCoordinator{
		db:           db,
		log:          baseLog.With("service", "RetrainCoordinator"),
		runRepo:      runRepo,
		userRepo:     userRepo,
		feedbackRepo: feedbackRepo,
		model:        model,
		projector:    projector,
	}
}

// Request claims the slot, runs the external trainer synchronously, and
// frees the slot on either outcome. The returned run is terminal.
func (rc *retrainCoordinator) Request(ctx context.Context) (*types.RetrainRun, error) {
	run, err := rc.claimSlot()
	if err != nil {
		return nil, err
	}
	rc.log.Info("Retrain run started", "run_id", run.ID)
	// Persist a detached copy: gorm backfills timestamps on the struct it is
	// given, and the shared run is only ever written under rc.mu.
	record := *run
	if _, err := rc.runRepo.Create(ctx, nil, &record); err != nil {
		rc.log.Warn("Failed to persist retrain run start", "run_id", run.ID, "error", err)
	}

	metrics, trainErr := rc.train(ctx, run)

	finished := time.Now()
	rc.mu.Lock()
	run.FinishedAt = &finished
	run.UpdatedAt = finished
	if trainErr != nil {
		run.Status = types.RetrainStatusFailed
		run.Error = trainErr.Error()
	} else {
		run.Status = types.RetrainStatusSucceeded
		run.ModelVersion = metrics.ModelVersion
		run.TrainedOnCount = metrics.TrainedOnDataCount
	}
	rc.running = false
	rc.mu.Unlock()

	if err := rc.runRepo.UpdateFields(ctx, nil, run.ID, map[string]interface{}{
		"status":           run.Status,
		"finished_at":      run.FinishedAt,
		"error":            run.Error,
		"model_version":    run.ModelVersion,
		"trained_on_count": run.TrainedOnCount,
	}); err != nil {
		rc.log.Warn("Failed to persist retrain run result", "run_id", run.ID, "error", err)
	}

	if trainErr != nil {
		rc.log.Error("Retrain run failed", "run_id", run.ID, "error", trainErr)
		return run, fmt.Errorf("%w: %v", ErrTrainerFailed, trainErr)
	}

	if err := rc.projector.Refresh(ctx, metrics); err != nil {
		rc.log.Error("Failed to refresh model metrics after retrain", "run_id", run.ID, "error", err)
		return run, err
	}
	rc.log.Info("Retrain run succeeded", "run_id", run.ID, "model_version", run.ModelVersion)
	return run, nil
}

func (rc *retrainCoordinator) Status(ctx context.Context) *types.RetrainRun {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.current == nil {
		return &types.RetrainRun{Status: types.RetrainStatusIdle}
	}
	copied := *rc.current
	return &copied
}

// claimSlot fully initializes the run before publishing it as rc.current, so
// every later write to the shared struct happens under rc.mu.
func (rc *retrainCoordinator) claimSlot() (*types.RetrainRun, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.running {
		return nil, ErrRetrainInProgress
	}
	now := time.Now()
	run := &types.RetrainRun{
		ID:        uuid.New(),
		Status:    types.RetrainStatusRunning,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rc.running = true
	rc.current = run
	return run, nil
}

func (rc *retrainCoordinator) train(ctx context.Context, run *types.RetrainRun) (*types.ModelMetrics, error) {
	var (
		users    []*types.User
		feedback []*types.Feedback
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		users, err = rc.userRepo.ListAll(groupCtx, nil)
		return err
	})
	group.Go(func() error {
		var err error
		feedback, err = rc.feedbackRepo.ListAll(groupCtx, nil)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("load training corpus: %w", err)
	}

	metrics, err := rc.model.Train(ctx, TrainRequest{Users: users, Feedback: feedback})
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		return nil, fmt.Errorf("model service returned no metrics")
	}
	if metrics.TrainedOnDataCount == 0 {
		metrics.TrainedOnDataCount = len(feedback)
	}
	return metrics, nil
}
