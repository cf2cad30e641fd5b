package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/notifications"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReleaseHeldPayments sweeps held payments whose cooling period has elapsed
// and pays out the tutors. Each payment settles in its own transaction so one
// bad row cannot block the rest of the batch.
func ReleaseHeldPayments() {
	log.Println("Running job: ReleaseHeldPayments...")

	now := time.Now()
	var due []models.Payment
	err := database.DB.
		Where("status = ? AND hold_until IS NOT NULL AND hold_until <= ?", models.PaymentOnHold, now).
		Find(&due).Error
	if err != nil {
		log.Printf("🔥 Failed to query held payments: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	released := 0
	for _, candidate := range due {
		var payment models.Payment
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", candidate.ID).Error; err != nil {
				return err
			}
			return services.ReleaseAndPayout(tx, &payment, now)
		})
		if err != nil {
			// Already released by a manual action, or a real failure.
			if err != services.ErrNotEligibleForRelease {
				log.Printf("⚠️ Failed to release payment %s: %v", candidate.ID, err)
			}
			continue
		}
		released++

		var tutor models.User
		if database.DB.First(&tutor, "id = ?", payment.TutorID).Error == nil {
			go notifications.SendEmail(tutor.FullName, tutor.Email, "Payout Released",
				fmt.Sprintf("<h1>Payout Released</h1><p>₹%.2f has been credited to your wallet for a completed lesson.</p>", payment.TutorPayout))
		}
	}

	log.Printf("✅ Released %d of %d due payments", released, len(due))
}
