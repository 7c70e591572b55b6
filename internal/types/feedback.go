package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ConfidenceAccuracyHigh   = "High"
	ConfidenceAccuracyMedium = "Medium"
	ConfidenceAccuracyLow    = "Low"
)

// Feedback is append-only: rows are created once and never updated or
// deleted. Insertion order (created_at, then id) is the submission order the
// aggregation layer relies on.
type Feedback struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	User               *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating             int       `gorm:"not null;column:rating" json:"rating"`
	Helpful            bool      `gorm:"not null;column:helpful" json:"helpful"`
	ConfidenceAccuracy string    `gorm:"not null;column:confidence_accuracy" json:"confidenceAccuracy"`
	AspiringRole       string    `gorm:"column:aspiring_role" json:"aspiringRole"`
	PredictedRole      string    `gorm:"column:predicted_role" json:"predictedRole"`
	ConfidenceScore    int       `gorm:"column:confidence_score" json:"confidenceScore"`
	Comment            string    `gorm:"column:comment" json:"comment,omitempty"`
	CreatedAt          time.Time `gorm:"not null;index" json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}
