package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RetrainStatusIdle      = "idle"
	RetrainStatusRunning   = "running"
	RetrainStatusSucceeded = "succeeded"
	RetrainStatusFailed    = "failed"
)

// RetrainRun is the persisted record of one retraining attempt. The
// coordinator's in-memory lock is the single-flight authority; rows here are
// history and reporting, never a lock.
type RetrainRun struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Status         string     `gorm:"not null;index;column:status" json:"status"`
	StartedAt      time.Time  `gorm:"not null;column:started_at" json:"startedAt"`
	FinishedAt     *time.Time `gorm:"column:finished_at" json:"finishedAt,omitempty"`
	Error          string     `gorm:"column:error" json:"error,omitempty"`
	TrainedOnCount int        `gorm:"column:trained_on_count" json:"trainedOnCount"`
	ModelVersion   string     `gorm:"column:model_version" json:"modelVersion,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (RetrainRun) TableName() string {
	return "retrain_run"
}
