package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/types"
)

// PreprocessInput is the profile form the dashboard submits for analysis.
type PreprocessInput struct {
	Name             string   `json:"name"`
	Phone            string   `json:"phone"`
	Gender           string   `json:"gender"`
	CGPA             float64  `json:"cgpa"`
	Degree           string   `json:"degree"`
	UGSpecialization string   `json:"ug_specialization"`
	Interests        []string `json:"interests"`
	Certificates     []string `json:"certificates"`
	Skills           []string `json:"skills"`
	AspiringRole     string   `json:"aspiringRole"`
}

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
	Preprocess(ctx context.Context, userID uuid.UUID, input PreprocessInput) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	model    ModelClient
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, model ModelClient) UserService {
	return &userService{
		db:       db,
		log:      baseLog.With("service", "UserService"),
		userRepo: userRepo,
		model:    model,
	}
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id not set in request data")
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return users[0], nil
}

// Preprocess stores the submitted profile and asks the model service for a
// fresh recommendation list. The recommendation payload is opaque to this
// core: it is stored as returned.
func (us *userService) Preprocess(ctx context.Context, userID uuid.UUID, input PreprocessInput) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id not set in request data")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "missing"}
	}
	if input.CGPA < 0 || input.CGPA > 10 {
		return nil, &ValidationError{Field: "cgpa", Reason: "must be between 0 and 10"}
	}

	recommendations, err := us.model.Predict(ctx, PredictRequest{
		Degree:           input.Degree,
		UGSpecialization: input.UGSpecialization,
		CGPA:             input.CGPA,
		Skills:           input.Skills,
		Interests:        input.Interests,
		Certificates:     input.Certificates,
		AspiringRole:     input.AspiringRole,
	})
	if err != nil {
		return nil, fmt.Errorf("model prediction: %w", err)
	}

	updates := map[string]interface{}{
		"name":              strings.TrimSpace(input.Name),
		"phone":             strings.TrimSpace(input.Phone),
		"gender":            input.Gender,
		"cgpa":              input.CGPA,
		"degree":            strings.TrimSpace(input.Degree),
		"ug_specialization": strings.TrimSpace(input.UGSpecialization),
		"aspiring_role":     strings.TrimSpace(input.AspiringRole),
		"interests":         toJSON(input.Interests),
		"certificates":      toJSON(input.Certificates),
		"skills":            toJSON(input.Skills),
		"recommendations":   toJSON(recommendations),
	}
	if err := us.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return us.GetMe(ctx, userID)
}

func toJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(raw)
}
