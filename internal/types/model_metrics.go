package types

import (
	"time"

	"github.com/google/uuid"
)

// ModelMetrics is the last known performance of the trained model. A new row
// is written only by the retrain coordinator on a successful run; readers go
// through the metrics projector, never this table directly.
type ModelMetrics struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ModelVersion       string    `gorm:"not null;column:model_version" json:"modelVersion"`
	Accuracy           float64   `gorm:"not null;column:accuracy" json:"accuracy"`
	Precision          float64   `gorm:"not null;column:precision_score" json:"precision"`
	Recall             float64   `gorm:"not null;column:recall" json:"recall"`
	F1Score            float64   `gorm:"not null;column:f1_score" json:"f1Score"`
	TrainedOnDataCount int       `gorm:"not null;column:trained_on_data_count" json:"trainedOnDataCount"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}

func (ModelMetrics) TableName() string {
	return "model_metrics"
}
