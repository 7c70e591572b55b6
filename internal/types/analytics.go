package types

import "github.com/google/uuid"

const (
	MonitorStatusMonitor = "MONITOR"
	MonitorStatusNormal  = "NORMAL"
)

// UserMonitoringRow is one line of the admin analytics grid.
type UserMonitoringRow struct {
	UserID           uuid.UUID `json:"userId"`
	Name             string    `json:"name"`
	AspiringRole     string    `json:"aspiringRole"`
	FeedbackCount    int       `json:"feedbackCount"`
	LatestPrediction string    `json:"latestPrediction"`
	Status           string    `json:"status"`
}

// AnalyticsSnapshot is a pure projection of the user and feedback tables at
// one moment. It is recomputed on every read and never stored.
type AnalyticsSnapshot struct {
	TotalUsers         int                 `json:"totalUsers"`
	FeedbackCount      int                 `json:"feedbackCount"`
	HelpfulPercentage  int                 `json:"helpfulPercentage"`
	UserMonitoringGrid []UserMonitoringRow `json:"userMonitoringGrid"`
}

// UserFeedbackGroup is one user's slice of the raw feedback list, in
// submission order.
type UserFeedbackGroup struct {
	Name          string      `json:"name"`
	Entries       []*Feedback `json:"entries"`
	FeedbackCount int         `json:"feedbackCount"`
}
