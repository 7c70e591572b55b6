package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/types"
)

// SubmitFeedbackInput mirrors the dashboard's feedback modal. Helpful comes
// over the wire as "Yes"/"No".
type SubmitFeedbackInput struct {
	Rating             int    `json:"rating"`
	Helpful            string `json:"helpful"`
	ConfidenceAccuracy string `json:"confidenceAccuracy"`
	AspiringRole       string `json:"aspiringRole"`
	Comment            string `json:"comment"`
}

type FeedbackService interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitFeedbackInput) (*types.Feedback, error)
	ListAll(ctx context.Context) ([]*types.Feedback, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Feedback, error)
}

type feedbackService struct {
	db           *gorm.DB
	log          *logger.Logger
	feedbackRepo repos.FeedbackRepo
	userRepo     repos.UserRepo
	limiter      RateLimiter
}

func NewFeedbackService(db *gorm.DB, baseLog *logger.Logger, feedbackRepo repos.FeedbackRepo, userRepo repos.UserRepo, limiter RateLimiter) FeedbackService {
	return &feedbackService{
		db:           db,
		log:          baseLog.With("service", "FeedbackService"),
		feedbackRepo: feedbackRepo,
		userRepo:     userRepo,
		limiter:      limiter,
	}
}

// Submit validates the entry, then holds the user's rate-limit guard across
// the window check and the append so concurrent submissions from the same
// user are serialized. A refusal writes nothing.
func (fs *feedbackService) Submit(ctx context.Context, userID uuid.UUID, input SubmitFeedbackInput) (*types.Feedback, error) {
	if userID == uuid.Nil {
		return nil, &ValidationError{Field: "userId", Reason: "missing"}
	}
	helpful, err := parseHelpful(input.Helpful)
	if err != nil {
		return nil, err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	switch input.ConfidenceAccuracy {
	case types.ConfidenceAccuracyHigh, types.ConfidenceAccuracyMedium, types.ConfidenceAccuracyLow:
	default:
		return nil, &ValidationError{Field: "confidenceAccuracy", Reason: "must be High, Medium or Low"}
	}

	users, err := fs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	predictedRole, confidenceScore := topRecommendation(users[0])

	unlock := fs.limiter.GuardUser(userID)
	defer unlock()

	decision, err := fs.limiter.TryAdmit(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !decision.Admitted {
		fs.log.Info("Feedback refused by rate limiter", "user_id", userID)
		return nil, ErrRateLimited
	}

	entry := &types.Feedback{
		ID:                 uuid.New(),
		UserID:             userID,
		Rating:             input.Rating,
		Helpful:            helpful,
		ConfidenceAccuracy: input.ConfidenceAccuracy,
		AspiringRole:       strings.TrimSpace(input.AspiringRole),
		PredictedRole:      predictedRole,
		ConfidenceScore:    confidenceScore,
		Comment:            strings.TrimSpace(input.Comment),
	}
	if _, err := fs.feedbackRepo.Create(ctx, nil, []*types.Feedback{entry}); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	return entry, nil
}

func (fs *feedbackService) ListAll(ctx context.Context) ([]*types.Feedback, error) {
	return fs.feedbackRepo.ListAllWithUser(ctx, nil)
}

func (fs *feedbackService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Feedback, error) {
	return fs.feedbackRepo.ListByUser(ctx, nil, userID)
}

func parseHelpful(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	default:
		return false, &ValidationError{Field: "helpful", Reason: "must be Yes or No"}
	}
}

// topRecommendation snapshots the top-1 prediction at submission time, the
// value the admin grid later reports as latestPrediction.
func topRecommendation(user *types.User) (string, int) {
	if user == nil || len(user.Recommendations) == 0 {
		return "", 0
	}
	var recs []types.Recommendation
	if err := json.Unmarshal(user.Recommendations, &recs); err != nil || len(recs) == 0 {
		return "", 0
	}
	return recs[0].Role, recs[0].Confidence
}
