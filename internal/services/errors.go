package services

import "errors"

var (
	// ErrRateLimited is returned when a user already has the maximum number
	// of feedback entries inside the rolling window. No record is written.
	ErrRateLimited = errors.New("feedback rate limit exceeded")

	// ErrRetrainInProgress is returned when a retrain request arrives while
	// another run holds the slot. The caller must retry later; the request
	// is never queued.
	ErrRetrainInProgress = errors.New("retraining already in progress")

	// ErrTrainerFailed wraps a failure reported by the external model
	// service. The run is preserved as failed.
	ErrTrainerFailed = errors.New("model trainer failed")

	ErrNotFound = errors.New("not found")
)

// ValidationError marks malformed input rejected before it reaches the rate
// limiter or the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
