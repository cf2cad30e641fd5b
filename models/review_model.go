package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;unique" json:"booking_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`
	TutorID   uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`

	Rating  int    `gorm:"not null" json:"rating"` // 1-5
	Comment string `gorm:"type:text" json:"comment"`

	IsApproved    bool       `gorm:"default:false" json:"is_approved"`
	IsFlagged     bool       `gorm:"default:false" json:"is_flagged"`
	FlaggedReason string     `gorm:"type:text" json:"flagged_reason"`
	ModeratedBy   *uuid.UUID `gorm:"type:uuid" json:"moderated_by"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"-"`
	Student User    `gorm:"foreignkey:StudentID" json:"student"`
	Tutor   User    `gorm:"foreignkey:TutorID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeClosed      DisputeStatus = "closed"
)

type Dispute struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null" json:"booking_id"`
	RaisedBy  uuid.UUID `gorm:"type:uuid;not null" json:"raised_by"`

	DisputeType string        `gorm:"size:20;not null" json:"dispute_type"` // payment, service, cancellation, safety, other
	Description string        `gorm:"type:text;not null" json:"description"`
	Status      DisputeStatus `gorm:"size:20;not null;default:'open'" json:"status"`

	Resolution string     `gorm:"type:text" json:"resolution"`
	ResolvedBy *uuid.UUID `gorm:"type:uuid" json:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking"`
	Raiser  User    `gorm:"foreignkey:RaisedBy" json:"raiser"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
