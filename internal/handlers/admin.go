package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerlens/careerlens-backend/internal/services"
)

type AdminHandler struct {
	analyticsService services.AnalyticsService
	feedbackService  services.FeedbackService
	metricsProjector services.MetricsProjector
	retrain          services.RetrainCoordinator
}

func NewAdminHandler(
	analyticsService services.AnalyticsService,
	feedbackService services.FeedbackService,
	metricsProjector services.MetricsProjector,
	retrain services.RetrainCoordinator,
) *AdminHandler {
	return &AdminHandler{
		analyticsService: analyticsService,
		feedbackService:  feedbackService,
		metricsProjector: metricsProjector,
		retrain:          retrain,
	}
}

// GET /api/admin/analytics
func (ah *AdminHandler) GetAnalytics(c *gin.Context) {
	snapshot, err := ah.analyticsService.ComputeSnapshot(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "analytics_failed", err)
		return
	}
	RespondOK(c, snapshot)
}

// GET /api/admin/metrics
func (ah *AdminHandler) GetMetrics(c *gin.Context) {
	RespondOK(c, ah.metricsProjector.Current(c.Request.Context()))
}

// GET /api/admin/feedback
func (ah *AdminHandler) ListFeedback(c *gin.Context) {
	entries, err := ah.feedbackService.ListAll(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "feedback_list_failed", err)
		return
	}
	RespondOK(c, entries)
}

// POST /api/admin/retrain
//
// Runs the trainer synchronously: 200 with the finished run, 409 while
// another run holds the slot, 502 when the trainer itself fails.
func (ah *AdminHandler) Retrain(c *gin.Context) {
	run, err := ah.retrain.Request(c.Request.Context())
	if err != nil {
		status, code := statusForServiceError(err)
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}

// GET /api/admin/retrain/status
func (ah *AdminHandler) RetrainStatus(c *gin.Context) {
	RespondOK(c, gin.H{"run": ah.retrain.Status(c.Request.Context())})
}
