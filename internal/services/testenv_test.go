package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}, &types.Feedback{}, &types.ModelMetrics{}, &types.RetrainRun{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

type testEnv struct {
	db           *gorm.DB
	userRepo     repos.UserRepo
	feedbackRepo repos.FeedbackRepo
	limiter      RateLimiter
	feedback     FeedbackService
	analytics    AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := testDB(t)
	log := logger.NewNop()
	userRepo := repos.NewUserRepo(gdb, log)
	feedbackRepo := repos.NewFeedbackRepo(gdb, log)
	limiter := NewRateLimiter(log, feedbackRepo, DefaultFeedbackLimit, DefaultFeedbackWindow)
	return &testEnv{
		db:           gdb,
		userRepo:     userRepo,
		feedbackRepo: feedbackRepo,
		limiter:      limiter,
		feedback:     NewFeedbackService(gdb, log, feedbackRepo, userRepo, limiter),
		analytics:    NewAnalyticsService(gdb, log, userRepo, feedbackRepo),
	}
}

func (env *testEnv) seedUser(t *testing.T, name string, recommendations []types.Recommendation) *types.User {
	t.Helper()
	raw, err := json.Marshal(recommendations)
	if err != nil {
		t.Fatalf("marshal recommendations: %v", err)
	}
	user := &types.User{
		ID:              uuid.New(),
		Email:           strings.ToLower(name) + "@example.com",
		Name:            name,
		AspiringRole:    "Data Scientist",
		Recommendations: raw,
	}
	if _, err := env.userRepo.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (env *testEnv) seedFeedback(t *testing.T, userID uuid.UUID, helpful bool, predictedRole string, createdAt time.Time) *types.Feedback {
	t.Helper()
	entry := &types.Feedback{
		ID:                 uuid.New(),
		UserID:             userID,
		Rating:             4,
		Helpful:            helpful,
		ConfidenceAccuracy: types.ConfidenceAccuracyMedium,
		PredictedRole:      predictedRole,
		CreatedAt:          createdAt,
	}
	if _, err := env.feedbackRepo.Create(context.Background(), nil, []*types.Feedback{entry}); err != nil {
		t.Fatalf("seed feedback: %v", err)
	}
	return entry
}

func validSubmitInput() SubmitFeedbackInput {
	return SubmitFeedbackInput{
		Rating:             4,
		Helpful:            "Yes",
		ConfidenceAccuracy: types.ConfidenceAccuracyMedium,
		AspiringRole:       "ML Engineer",
	}
}

// stubModelClient lets tests script trainer behavior, including blocking
// mid-call to exercise the single-flight guarantee.
type stubModelClient struct {
	mu        sync.Mutex
	trainFn   func(ctx context.Context, req TrainRequest) (*types.ModelMetrics, error)
	predictFn func(ctx context.Context, req PredictRequest) ([]types.Recommendation, error)
	trains    int
}

func (s *stubModelClient) Train(ctx context.Context, req TrainRequest) (*types.ModelMetrics, error) {
	s.mu.Lock()
	s.trains++
	fn := s.trainFn
	s.mu.Unlock()
	if fn == nil {
		return &types.ModelMetrics{ModelVersion: "test", Accuracy: 0.9}, nil
	}
	return fn(ctx, req)
}

func (s *stubModelClient) Predict(ctx context.Context, req PredictRequest) ([]types.Recommendation, error) {
	if s.predictFn == nil {
		return []types.Recommendation{{Role: "Software Engineer", Confidence: 80}}, nil
	}
	return s.predictFn(ctx, req)
}

func (s *stubModelClient) trainCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trains
}
