package models

import (
	"time"

	"github.com/google/uuid"
)

// QualityAudit is an append-only record of a scoring event. A new audit
// supersedes older ones; rows are never mutated after creation.
type QualityAudit struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TutorID uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`

	AuditType       string  `gorm:"size:20;not null;default:'manual'" json:"audit_type"` // manual, scheduled, approval
	QualityScore    float64 `gorm:"type:numeric(5,2);not null" json:"quality_score"`
	IssuesFound     string  `gorm:"type:text" json:"issues_found"`
	Recommendations string  `gorm:"type:text" json:"recommendations"`

	AuditedBy  *uuid.UUID `gorm:"type:uuid" json:"audited_by"`
	IsResolved bool       `gorm:"default:false" json:"is_resolved"`

	Tutor   TutorProfile `gorm:"foreignkey:TutorID" json:"-"`
	Auditor *User        `gorm:"foreignkey:AuditedBy" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
