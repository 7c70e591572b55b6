package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/careerlens/careerlens-backend/internal/handlers"
	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/middleware"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/server"
	"github.com/careerlens/careerlens-backend/internal/services"
	"github.com/careerlens/careerlens-backend/internal/types"
)

const testSecret = "testsecret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubModel struct {
	trainFn func(ctx context.Context, req services.TrainRequest) (*types.ModelMetrics, error)
}

func (s *stubModel) Train(ctx context.Context, req services.TrainRequest) (*types.ModelMetrics, error) {
	if s.trainFn == nil {
		return &types.ModelMetrics{ModelVersion: "2.0.0", Accuracy: 0.9}, nil
	}
	return s.trainFn(ctx, req)
}

func (s *stubModel) Predict(ctx context.Context, req services.PredictRequest) ([]types.Recommendation, error) {
	return []types.Recommendation{{Role: "Software Engineer", Confidence: 82}}, nil
}

type testStack struct {
	router   *gin.Engine
	db       *gorm.DB
	userRepo repos.UserRepo
}

func newTestStack(t *testing.T, model services.ModelClient) *testStack {
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

	log := logger.NewNop()
	userRepo := repos.NewUserRepo(gdb, log)
	feedbackRepo := repos.NewFeedbackRepo(gdb, log)
	metricsRepo := repos.NewModelMetricsRepo(gdb, log)
	runRepo := repos.NewRetrainRunRepo(gdb, log)

	limiter := services.NewRateLimiter(log, feedbackRepo, services.DefaultFeedbackLimit, services.DefaultFeedbackWindow)
	feedbackService := services.NewFeedbackService(gdb, log, feedbackRepo, userRepo, limiter)
	analyticsService := services.NewAnalyticsService(gdb, log, userRepo, feedbackRepo)
	userService := services.NewUserService(gdb, log, userRepo, model)
	projector, err := services.NewMetricsProjector(gdb, log, metricsRepo)
	if err != nil {
		t.Fatalf("NewMetricsProjector: %v", err)
	}
	coordinator := services.NewRetrainCoordinator(gdb, log, runRepo, userRepo, feedbackRepo, model, projector)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:     "careerlens-test",
		AuthMiddleware:  middleware.NewAuthMiddleware(log, testSecret),
		UserHandler:     handlers.NewUserHandler(userService),
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		AdminHandler:    handlers.NewAdminHandler(analyticsService, feedbackService, projector, coordinator),
	})
	return &testStack{router: router, db: gdb, userRepo: userRepo}
}

func (ts *testStack) seedUser(t *testing.T, name string) *types.User {
	t.Helper()
	user := &types.User{ID: uuid.New(), Email: strings.ToLower(name) + "@example.com", Name: name}
	if _, err := ts.userRepo.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func signToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (ts *testStack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func feedbackBody() map[string]any {
	return map[string]any{
		"rating":             5,
		"helpful":            "Yes",
		"confidenceAccuracy": "High",
		"aspiringRole":       "ML Engineer",
	}
}

func TestSubmitFeedbackRequiresToken(t *testing.T) {
	ts := newTestStack(t, &stubModel{})
	rec := ts.do(t, http.MethodPost, "/api/user/feedback", "", feedbackBody())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}
}

func TestSubmitFeedbackRateLimitMessage(t *testing.T) {
	ts := newTestStack(t, &stubModel{})
	user := ts.seedUser(t, "Asha")
	token := signToken(t, user.ID, "user")

	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodPost, "/api/user/feedback", token, feedbackBody())
		if rec.Code != http.StatusOK {
			t.Fatalf("submission %d status=%d body=%s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec := ts.do(t, http.MethodPost, "/api/user/feedback", token, feedbackBody())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("fourth submission status=%d, want 403", rec.Code)
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Message != "You can submit at most three feedbacks a week." {
		t.Fatalf("message=%q, want the dashboard copy", payload.Message)
	}
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	ts := newTestStack(t, &stubModel{})
	user := ts.seedUser(t, "Ravi")
	token := signToken(t, user.ID, "user")

	rec := ts.do(t, http.MethodGet, "/api/admin/analytics", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d, want 403", rec.Code)
	}
}

func TestAdminAnalyticsAndMetrics(t *testing.T) {
	ts := newTestStack(t, &stubModel{})
	ts.seedUser(t, "Asha")
	ts.seedUser(t, "Ravi")
	admin := signToken(t, uuid.New(), "admin")

	rec := ts.do(t, http.MethodGet, "/api/admin/analytics", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status=%d body=%s", rec.Code, rec.Body.String())
	}
	var snapshot types.AnalyticsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.TotalUsers != 2 || snapshot.FeedbackCount != 0 || snapshot.HelpfulPercentage != 0 {
		t.Fatalf("snapshot=%+v, want 2 users and zeroed feedback figures", snapshot)
	}

	rec = ts.do(t, http.MethodGet, "/api/admin/metrics", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rec.Code)
	}
	var metrics types.ModelMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.ModelVersion != "1.0.0" {
		t.Fatalf("modelVersion=%q, want untrained baseline 1.0.0", metrics.ModelVersion)
	}
}

func TestAdminRetrainConflict(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	model := &stubModel{
		trainFn: func(ctx context.Context, req services.TrainRequest) (*types.ModelMetrics, error) {
			close(started)
			<-release
			return &types.ModelMetrics{ModelVersion: "2.0.0"}, nil
		},
	}
	ts := newTestStack(t, model)
	admin := signToken(t, uuid.New(), "admin")

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- ts.do(t, http.MethodPost, "/api/admin/retrain", admin, map[string]any{})
	}()
	<-started

	rec := ts.do(t, http.MethodPost, "/api/admin/retrain", admin, map[string]any{})
	if rec.Code != http.StatusConflict {
		t.Fatalf("concurrent retrain status=%d, want 409", rec.Code)
	}

	close(release)
	first := <-done
	if first.Code != http.StatusOK {
		t.Fatalf("first retrain status=%d body=%s", first.Code, first.Body.String())
	}
}

func TestAdminRetrainTrainerFailure(t *testing.T) {
	model := &stubModel{
		trainFn: func(ctx context.Context, req services.TrainRequest) (*types.ModelMetrics, error) {
			return nil, fmt.Errorf("gpu on fire")
		},
	}
	ts := newTestStack(t, model)
	admin := signToken(t, uuid.New(), "admin")

	rec := ts.do(t, http.MethodPost, "/api/admin/retrain", admin, map[string]any{})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d, want 502", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/admin/metrics", admin, nil)
	var metrics types.ModelMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.ModelVersion != "1.0.0" {
		t.Fatalf("metrics changed after failed retrain: %+v", metrics)
	}
}

func TestPreprocessStoresRecommendations(t *testing.T) {
	ts := newTestStack(t, &stubModel{})
	user := ts.seedUser(t, "Lena")
	token := signToken(t, user.ID, "user")

	rec := ts.do(t, http.MethodPost, "/api/user/preprocess", token, map[string]any{
		"name":         "Lena",
		"cgpa":         8.2,
		"degree":       "B.Tech",
		"skills":       []string{"python", "sql"},
		"aspiringRole": "Data Engineer",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("preprocess status=%d body=%s", rec.Code, rec.Body.String())
	}

	me := ts.do(t, http.MethodGet, "/auth/me", token, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("me status=%d", me.Code)
	}
	var got types.User
	if err := json.Unmarshal(me.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	var recs []types.Recommendation
	if err := json.Unmarshal(got.Recommendations, &recs); err != nil {
		t.Fatalf("decode recommendations: %v", err)
	}
	if len(recs) != 1 || recs[0].Role != "Software Engineer" {
		t.Fatalf("recommendations=%+v, want the model service result stored", recs)
	}
}
