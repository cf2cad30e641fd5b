package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/ranktutor/ranktutor/models"
	"gorm.io/gorm"
)

// interventionThreshold flags tutors for admin follow-up.
const interventionThreshold = 50

// RecordQualityAudit rescores the tutor, appends the audit row and updates
// the cached score on the profile in one pass. A manual score, when given,
// overrides the computed one. Subjects must be preloaded on the tutor.
func RecordQualityAudit(tx *gorm.DB, tutor *models.TutorProfile, auditType, issues, recommendations string, auditedBy *uuid.UUID, manualScore *float64, markResolved bool) (*models.QualityAudit, error) {
	score := QualityScore(tutor)
	if manualScore != nil {
		score = *manualScore
	}

	audit := models.QualityAudit{
		TutorID:         tutor.ID,
		AuditType:       auditType,
		QualityScore:    score,
		IssuesFound:     issues,
		Recommendations: recommendations,
		AuditedBy:       auditedBy,
		IsResolved:      markResolved,
	}
	if err := tx.Create(&audit).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	tutor.QualityScore = score
	tutor.LastQualityAudit = &now
	tutor.QualityIssues = issues
	if score < interventionThreshold {
		tutor.InterventionRequired = true
	} else if markResolved || score >= interventionThreshold {
		tutor.InterventionRequired = false
	}
	if err := tx.Save(tutor).Error; err != nil {
		return nil, err
	}

	return &audit, nil
}

// RefreshTutorRating recomputes the cached average rating and review count
// from approved reviews, then refreshes the quality score those feed into.
// Runs inside the transaction that changed the reviews.
func RefreshTutorRating(tx *gorm.DB, tutorProfileID uuid.UUID) error {
	var tutor models.TutorProfile
	if err := tx.Preload("Subjects").First(&tutor, "id = ?", tutorProfileID).Error; err != nil {
		return err
	}

	var result struct {
		Avg   float64
		Count int
	}
	if err := tx.Model(&models.Review{}).
		Where("tutor_id = ? AND is_approved = ?", tutor.UserID, true).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Scan(&result).Error; err != nil {
		return err
	}

	tutor.AverageRating = result.Avg
	tutor.TotalReviews = result.Count
	tutor.QualityScore = QualityScore(&tutor)
	return tx.Save(&tutor).Error
}
