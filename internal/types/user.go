package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Recommendation is produced by the external model service and stored on the
// user record as JSON. The core never writes individual recommendations; it
// only replaces the whole list after a preprocess call.
type Recommendation struct {
	Role          string   `json:"role"`
	Confidence    int      `json:"confidence"`
	MissingSkills []string `json:"missing_skills"`
}

type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name             string         `gorm:"not null;column:name" json:"name"`
	Phone            string         `gorm:"column:phone" json:"phone"`
	Gender           string         `gorm:"column:gender" json:"gender"`
	CGPA             float64        `gorm:"column:cgpa" json:"cgpa"`
	Degree           string         `gorm:"column:degree" json:"degree"`
	UGSpecialization string         `gorm:"column:ug_specialization" json:"ug_specialization"`
	Interests        datatypes.JSON `gorm:"column:interests" json:"interests"`
	Certificates     datatypes.JSON `gorm:"column:certificates" json:"certificates"`
	Skills           datatypes.JSON `gorm:"column:skills" json:"skills"`
	AspiringRole     string         `gorm:"column:aspiring_role" json:"aspiringRole"`
	Recommendations  datatypes.JSON `gorm:"column:recommendations" json:"recommendations"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
