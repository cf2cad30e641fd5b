package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a weekly recurring window a tutor is open for lessons.
type AvailabilitySlot struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TutorID uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`

	DayOfWeek   int    `gorm:"not null" json:"day_of_week"` // 0 = Monday .. 6 = Sunday
	StartTime   string `gorm:"size:5;not null" json:"start_time"`
	EndTime     string `gorm:"size:5;not null" json:"end_time"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`

	Tutor User `gorm:"foreignkey:TutorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
