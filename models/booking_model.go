package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type RecurrencePattern string

const (
	RecurDaily    RecurrencePattern = "daily"
	RecurWeekly   RecurrencePattern = "weekly"
	RecurBiweekly RecurrencePattern = "biweekly"
	RecurMonthly  RecurrencePattern = "monthly"
)

type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`
	TutorID   uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null" json:"subject_id"`

	Status BookingStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Mode   LessonMode    `gorm:"size:20;not null" json:"mode"`

	LessonDate    time.Time `gorm:"type:date;not null" json:"lesson_date"`
	LessonTime    string    `gorm:"size:5;not null" json:"lesson_time"` // HH:MM
	DurationHours float64   `gorm:"type:numeric(4,2);not null;default:1" json:"duration_hours"`

	IsRecurring       bool              `gorm:"default:false" json:"is_recurring"`
	RecurrencePattern RecurrencePattern `gorm:"size:20" json:"recurrence_pattern"`
	RecurrenceEndDate *time.Time        `gorm:"type:date" json:"recurrence_end_date"`
	ParentBookingID   *uuid.UUID        `gorm:"type:uuid" json:"parent_booking_id"`

	// Address for home tutoring.
	Address string `gorm:"type:text" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	Pincode string `gorm:"size:10" json:"pincode"`

	PricePerHour     float64 `gorm:"type:numeric(10,2);not null" json:"price_per_hour"`
	TotalAmount      float64 `gorm:"type:numeric(10,2)" json:"total_amount"`
	CommissionRate   float64 `gorm:"type:numeric(5,4);not null;default:0.15" json:"commission_rate"`
	CommissionAmount float64 `gorm:"type:numeric(10,2)" json:"commission_amount"`

	IsTrial     bool `gorm:"default:false" json:"is_trial"`
	TrialIsFree bool `gorm:"default:false" json:"trial_is_free"`

	StudentNotes string `gorm:"type:text" json:"student_notes"`
	TutorNotes   string `gorm:"type:text" json:"tutor_notes"`

	AcceptedAt  *time.Time `json:"accepted_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Student       User     `gorm:"foreignkey:StudentID" json:"student"`
	Tutor         User     `gorm:"foreignkey:TutorID" json:"tutor"`
	Subject       Subject  `gorm:"foreignkey:SubjectID" json:"subject"`
	ParentBooking *Booking `gorm:"foreignkey:ParentBookingID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BookingAmounts derives the charged total and platform commission from the
// hourly price. The commission rate is an input, never read from globals.
func BookingAmounts(pricePerHour, durationHours, commissionRate float64) (total, commission float64) {
	total = pricePerHour * durationHours
	commission = total * commissionRate
	return total, commission
}

// BeforeSave keeps total_amount and commission_amount consistent with the
// hourly price on every write, using the rate captured at creation time.
// A free trial charges nothing, so both amounts stay zero.
func (b *Booking) BeforeSave(tx *gorm.DB) error {
	if b.TrialIsFree {
		b.TotalAmount, b.CommissionAmount = 0, 0
		return nil
	}
	b.TotalAmount, b.CommissionAmount = BookingAmounts(b.PricePerHour, b.DurationHours, b.CommissionRate)
	return nil
}

// TutorPayout is the booking amount net of commission.
func (b *Booking) TutorPayout() float64 {
	return b.TotalAmount - b.CommissionAmount
}

type Lesson struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;unique" json:"booking_id"`

	TopicsCovered    string `gorm:"type:text" json:"topics_covered"`
	HomeworkAssigned string `gorm:"type:text" json:"homework_assigned"`
	StudentProgress  string `gorm:"type:text" json:"student_progress"`

	StudentAttended bool `gorm:"default:true" json:"student_attended"`
	TutorAttended   bool `gorm:"default:true" json:"tutor_attended"`

	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
