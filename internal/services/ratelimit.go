package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens-backend/internal/logger"
	"github.com/careerlens/careerlens-backend/internal/repos"
)

const (
	// DefaultFeedbackLimit and DefaultFeedbackWindow implement the "at most
	// three feedbacks per trailing week" policy. The window slides with now;
	// it is not a calendar week.
	DefaultFeedbackLimit  = 3
	DefaultFeedbackWindow = 7 * 24 * time.Hour
)

type RateDecision struct {
	Admitted  bool `json:"admitted"`
	Remaining int  `json:"remaining"`
}

// RateLimiter decides whether a user may submit another feedback entry.
//
// TryAdmit on its own is only a read; callers that go on to append must hold
// the per-user guard from GuardUser across both the check and the append,
// otherwise two concurrent submissions could both observe the last free slot.
type RateLimiter interface {
	TryAdmit(ctx context.Context, userID uuid.UUID, now time.Time) (RateDecision, error)
	GuardUser(userID uuid.UUID) func()
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

type rateLimiter struct {
	log          *logger.Logger
	feedbackRepo repos.FeedbackRepo
	limit        int
	window       time.Duration

	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

func NewRateLimiter(baseLog *logger.Logger, feedbackRepo repos.FeedbackRepo, limit int, window time.Duration) RateLimiter {
	if limit <= 0 {
		limit = DefaultFeedbackLimit
	}
	if window <= 0 {
		window = DefaultFeedbackWindow
	}
	return &rateLimiter{
		log:          baseLog.With("service", "RateLimiter"),
		feedbackRepo: feedbackRepo,
		limit:        limit,
		window:       window,
		locks:        map[uuid.UUID]*userLock{},
	}
}

// GuardUser locks the user's entry and returns the release func. Entries are
// refcounted and dropped when the last holder releases, so the map stays
// bounded by the number of users with a submission in flight.
func (rl *rateLimiter) GuardUser(userID uuid.UUID) func() {
	rl.mu.Lock()
	lock, ok := rl.locks[userID]
	if !ok {
		lock = &userLock{}
		rl.locks[userID] = lock
	}
	lock.refs++
	rl.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		rl.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(rl.locks, userID)
		}
		rl.mu.Unlock()
	}
}

// TryAdmit counts the user's entries newer than now-window. The bound is
// exclusive: an entry exactly window old has already left the window.
// Remaining is the number of slots left after this submission would land.
func (rl *rateLimiter) TryAdmit(ctx context.Context, userID uuid.UUID, now time.Time) (RateDecision, error) {
	cutoff := now.Add(-rl.window)
	count, err := rl.feedbackRepo.CountForUserSince(ctx, nil, userID, cutoff)
	if err != nil {
		return RateDecision{}, err
	}
	if count >= int64(rl.limit) {
		return RateDecision{Admitted: false, Remaining: 0}, nil
	}
	return RateDecision{Admitted: true, Remaining: rl.limit - int(count) - 1}, nil
}
