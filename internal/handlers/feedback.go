package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerlens/careerlens-backend/internal/requestdata"
	"github.com/careerlens/careerlens-backend/internal/services"
)

// rateLimitMessage is the exact copy the dashboard shows on a 403.
const rateLimitMessage = "You can submit at most three feedbacks a week."

type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// POST /api/user/feedback
func (fh *FeedbackHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input services.SubmitFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	entry, err := fh.feedbackService.Submit(c.Request.Context(), rd.UserID, input)
	if err != nil {
		if errors.Is(err, services.ErrRateLimited) {
			RespondError(c, http.StatusForbidden, "rate_limited", errors.New(rateLimitMessage))
			return
		}
		status, code := statusForServiceError(err)
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, entry)
}

// statusForServiceError maps the service error taxonomy onto HTTP codes.
func statusForServiceError(err error) (int, string) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusForbidden, "rate_limited"
	case errors.Is(err, services.ErrRetrainInProgress):
		return http.StatusConflict, "retrain_in_progress"
	case errors.Is(err, services.ErrTrainerFailed):
		return http.StatusBadGateway, "trainer_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
