package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeachingLevel string

const (
	LevelPrimary         TeachingLevel = "primary"
	LevelMiddle          TeachingLevel = "middle"
	LevelSecondary       TeachingLevel = "secondary"
	LevelSeniorSecondary TeachingLevel = "senior_secondary"
	LevelUndergraduate   TeachingLevel = "undergraduate"
	LevelGraduate        TeachingLevel = "graduate"
	LevelAll             TeachingLevel = "all"
)

type VerificationStatus string

const (
	VerificationPending     VerificationStatus = "pending"
	VerificationUnderReview VerificationStatus = "under_review"
	VerificationApproved    VerificationStatus = "approved"
	VerificationRejected    VerificationStatus = "rejected"
)

type TutorProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;unique" json:"user_id"`

	Headline   *string  `gorm:"size:150" json:"headline"`
	Bio        string   `gorm:"type:text" json:"bio"`
	Education  string   `gorm:"type:text" json:"education"`
	HourlyRate *float64 `gorm:"type:numeric(8,2)" json:"hourly_rate"`

	Subjects       []*Subject    `gorm:"many2many:tutor_subjects;" json:"subjects"`
	TeachingLevels TeachingLevel `gorm:"size:50;default:'all'" json:"teaching_levels"`

	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	Pincode      string `gorm:"size:10" json:"pincode"`
	ServiceAreas string `gorm:"type:text" json:"service_areas"`

	// Geolocation for map-based home tutoring search.
	Latitude  *float64 `gorm:"type:numeric(9,6)" json:"latitude"`
	Longitude *float64 `gorm:"type:numeric(9,6)" json:"longitude"`

	IsAvailableOnline bool `gorm:"default:true" json:"is_available_online"`
	IsAvailableHome   bool `gorm:"default:false" json:"is_available_home"`
	MaxTravelDistance int  `gorm:"default:10" json:"max_travel_distance"`

	IsVerified         bool               `gorm:"default:false" json:"is_verified"`
	VerificationStatus VerificationStatus `gorm:"size:20;default:'pending'" json:"verification_status"`

	HasAcademicVerification bool `gorm:"default:false" json:"has_academic_verification"`
	HasIDVerification       bool `gorm:"default:false" json:"has_id_verification"`
	HasPoliceVerification   bool `gorm:"default:false" json:"has_police_verification"`
	HasBackgroundCheck      bool `gorm:"default:false" json:"has_background_check"`

	YearsOfExperience int    `gorm:"default:0" json:"years_of_experience"`
	Certifications    string `gorm:"type:text" json:"certifications"`
	ProfileComplete   bool   `gorm:"default:false" json:"profile_complete"`

	IsFeatured        bool       `gorm:"default:false" json:"is_featured"`
	PremiumBoostUntil *time.Time `json:"premium_boost_until"`
	BoostCount        int        `gorm:"default:0" json:"boost_count"`

	QualityScore         float64    `gorm:"type:numeric(5,2);default:0" json:"quality_score"`
	LastQualityAudit     *time.Time `json:"last_quality_audit"`
	QualityIssues        string     `gorm:"type:text" json:"quality_issues"`
	InterventionRequired bool       `gorm:"default:false" json:"intervention_required"`

	AverageRating float64 `gorm:"type:numeric(3,2);default:0" json:"average_rating"`
	TotalReviews  int     `gorm:"default:0" json:"total_reviews"`

	User                 User                   `gorm:"foreignkey:UserID" json:"user"`
	PremiumSubscriptions []*PremiumSubscription `gorm:"foreignkey:TutorID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VerificationBadges lists the badges the tutor currently holds.
func (t *TutorProfile) VerificationBadges() []string {
	badges := []string{}
	if t.HasAcademicVerification {
		badges = append(badges, "academic")
	}
	if t.HasIDVerification {
		badges = append(badges, "id")
	}
	if t.HasPoliceVerification {
		badges = append(badges, "police")
	}
	if t.HasBackgroundCheck {
		badges = append(badges, "background")
	}
	return badges
}

// IsPremiumBoosted reports whether a time-boxed boost is still running.
func (t *TutorProfile) IsPremiumBoosted(now time.Time) bool {
	return t.PremiumBoostUntil != nil && now.Before(*t.PremiumBoostUntil)
}

func (t *TutorProfile) hasActiveSubscription(subType string, now time.Time) bool {
	for _, sub := range t.PremiumSubscriptions {
		if sub.SubscriptionType == subType && sub.IsActive && !now.After(sub.EndDate) {
			return true
		}
	}
	return false
}

func (t *TutorProfile) HasPremiumPackage(now time.Time) bool {
	return t.hasActiveSubscription("premium", now)
}

func (t *TutorProfile) HasFeaturedSubscription(now time.Time) bool {
	return t.hasActiveSubscription("featured", now)
}

type PremiumSubscription struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TutorID uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`

	SubscriptionType string    `gorm:"size:20;not null" json:"subscription_type"` // boost, featured, premium
	AmountPaid       float64   `gorm:"type:numeric(10,2);not null" json:"amount_paid"`
	StartDate        time.Time `gorm:"not null" json:"start_date"`
	EndDate          time.Time `gorm:"not null" json:"end_date"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PremiumPayment struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`

	PaymentType   string  `gorm:"size:20;not null" json:"payment_type"` // boost, featured, premium
	Amount        float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status        string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	TransactionID *string `gorm:"size:100" json:"transaction_id"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TutorDocument struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TutorID uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`

	DocumentType string  `gorm:"size:30;not null" json:"document_type"` // academic, id_proof, police_verification, certification, other
	FileURL      string  `gorm:"size:255;not null" json:"file_url"`
	IsVerified   bool    `gorm:"default:false" json:"is_verified"`
	ReviewNotes  *string `gorm:"type:text" json:"review_notes"`

	Tutor TutorProfile `gorm:"foreignkey:TutorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
