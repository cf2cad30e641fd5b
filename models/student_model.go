package models

import (
	"time"

	"github.com/google/uuid"
)

type LessonMode string

const (
	ModeOnline LessonMode = "online"
	ModeHome   LessonMode = "home"
	ModeBoth   LessonMode = "both" // preference only, never on a booking
)

type StudentProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;unique" json:"user_id"`

	StudentName string `gorm:"size:100" json:"student_name"`
	StudentAge  *int   `json:"student_age"`

	GradeLevel        TeachingLevel `gorm:"size:30" json:"grade_level"`
	PreferredSubjects []*Subject    `gorm:"many2many:student_preferred_subjects;" json:"preferred_subjects"`
	PreferredMode     LessonMode    `gorm:"size:20;default:'both'" json:"preferred_mode"`

	City          string `gorm:"size:100" json:"city"`
	State         string `gorm:"size:100" json:"state"`
	Pincode       string `gorm:"size:10" json:"pincode"`
	LearningGoals string `gorm:"type:text" json:"learning_goals"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
