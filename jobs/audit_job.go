package jobs

import (
	"log"

	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
)

// RunScheduledQualityAudits rescores every approved tutor and flags the ones
// that fall below the intervention line for admin follow-up.
func RunScheduledQualityAudits() {
	log.Println("Running job: RunScheduledQualityAudits...")

	var tutors []models.TutorProfile
	err := database.DB.
		Preload("Subjects").
		Where("is_verified = true AND verification_status = ?", models.VerificationApproved).
		Find(&tutors).Error
	if err != nil {
		log.Printf("🔥 Failed to load tutors for audit: %v", err)
		return
	}

	audited, flagged := 0, 0
	for i := range tutors {
		tutor := &tutors[i]
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			_, err := services.RecordQualityAudit(tx, tutor, "scheduled", "", "", nil, nil, false)
			return err
		})
		if err != nil {
			log.Printf("⚠️ Audit failed for tutor %s: %v", tutor.ID, err)
			continue
		}
		audited++
		if tutor.InterventionRequired {
			flagged++
		}
	}

	log.Printf("✅ Audited %d tutors, %d flagged for intervention", audited, flagged)
}
