package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/notifications"
)

// SendLessonReminders emails both parties of accepted lessons starting in
// roughly one hour. Runs every five minutes, so the window matches the tick.
func SendLessonReminders() {
	log.Println("Running job: SendLessonReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute).Format("15:04")
	upperBound := now.Add(65 * time.Minute).Format("15:04")
	today := now.Format("2006-01-02")

	var upcoming []models.Booking
	err := database.DB.
		Preload("Student").
		Preload("Tutor").
		Preload("Subject").
		Where("status = ? AND lesson_date = ? AND lesson_time BETWEEN ? AND ?", models.BookingAccepted, today, lowerBound, upperBound).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("🔥 Error checking for upcoming lessons: %v", err)
		return
	}
	if len(upcoming) == 0 {
		return
	}

	for _, booking := range upcoming {
		emailSubject := "Reminder: Your Lesson Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Lesson Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your %s lesson is scheduled to start at %s today.</p>",
			booking.Subject.Name,
			booking.LessonTime,
		)

		go notifications.SendEmail(booking.Student.FullName, booking.Student.Email, emailSubject, emailBody)
		go notifications.SendEmail(booking.Tutor.FullName, booking.Tutor.Email, emailSubject, emailBody)
	}

	log.Printf("✅ Sent reminders for %d upcoming lessons", len(upcoming))
}
