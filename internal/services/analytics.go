package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
	"github.com/careerlens/careerlens-backend/internal/types"
)

// monitorThreshold flags users with more than this many feedback entries.
// It is a plain threshold rule, not an anomaly detector.
const monitorThreshold = 2

// AnalyticsService derives admin projections from the user and feedback
// tables. Snapshots are pure functions of one load: every call re-reads and
// re-derives, so a reader can never see a half-applied append.
type AnalyticsService interface {
	ComputeSnapshot(ctx context.Context) (*types.AnalyticsSnapshot, error)
	GroupByUser(entries []*types.Feedback) map[uuid.UUID]*types.UserFeedbackGroup
}

type analyticsService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	feedbackRepo repos.FeedbackRepo
}

func NewAnalyticsService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, feedbackRepo repos.FeedbackRepo) AnalyticsService {
	return &analyticsService{
		db:           db,
		log:          baseLog.With("service", "AnalyticsService"),
		userRepo:     userRepo,
		feedbackRepo: feedbackRepo,
	}
}

// ComputeSnapshot loads users and feedback concurrently and derives every
// figure from those two slices. helpfulPercentage counts only the explicit
// helpful flag (the rating does not weight it) and is 0 on an empty store.
func (as *analyticsService) ComputeSnapshot(ctx context.Context) (*types.AnalyticsSnapshot, error) {
	var (
		users    []*types.User
		feedback []*types.Feedback
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		users, err = as.userRepo.ListAll(groupCtx, nil)
		return err
	})
	group.Go(func() error {
		var err error
		feedback, err = as.feedbackRepo.ListAll(groupCtx, nil)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	snapshot := &types.AnalyticsSnapshot{
		TotalUsers:         len(users),
		FeedbackCount:      len(feedback),
		UserMonitoringGrid: []types.UserMonitoringRow{},
	}

	helpful := 0
	perUserCount := map[uuid.UUID]int{}
	latestPrediction := map[uuid.UUID]string{}
	for _, entry := range feedback {
		if entry.Helpful {
			helpful++
		}
		perUserCount[entry.UserID]++
		// feedback is in submission order; the last write wins, which is the
		// tie-break the grid wants.
		latestPrediction[entry.UserID] = entry.PredictedRole
	}
	if len(feedback) > 0 {
		snapshot.HelpfulPercentage = helpful * 100 / len(feedback)
	}

	for _, user := range users {
		row := types.UserMonitoringRow{
			UserID:           user.ID,
			Name:             user.Name,
			AspiringRole:     user.AspiringRole,
			FeedbackCount:    perUserCount[user.ID],
			LatestPrediction: "None",
			Status:           types.MonitorStatusNormal,
		}
		if pred, ok := latestPrediction[user.ID]; ok && pred != "" {
			row.LatestPrediction = pred
		}
		if row.FeedbackCount > monitorThreshold {
			row.Status = types.MonitorStatusMonitor
		}
		snapshot.UserMonitoringGrid = append(snapshot.UserMonitoringGrid, row)
	}
	return snapshot, nil
}

// GroupByUser buckets feedback entries by owner, preserving submission order
// inside each bucket. Users with no feedback do not appear.
func (as *analyticsService) GroupByUser(entries []*types.Feedback) map[uuid.UUID]*types.UserFeedbackGroup {
	grouped := map[uuid.UUID]*types.UserFeedbackGroup{}
	for _, entry := range entries {
		group, ok := grouped[entry.UserID]
		if !ok {
			name := "Anonymous"
			if entry.User != nil && entry.User.Name != "" {
				name = entry.User.Name
			}
			group = &types.UserFeedbackGroup{Name: name}
			grouped[entry.UserID] = group
		}
		group.Entries = append(group.Entries, entry)
		group.FeedbackCount++
	}
	return grouped
}
