package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/ranktutor/ranktutor/configs"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/notifications"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateBookingRequest struct {
	TutorID           string  `json:"tutor_id" validate:"required,uuid"`
	SubjectID         string  `json:"subject_id" validate:"required,uuid"`
	LessonDate        string  `json:"lesson_date" validate:"required,datetime=2006-01-02"`
	LessonTime        string  `json:"lesson_time" validate:"required,datetime=15:04"`
	DurationHours     float64 `json:"duration_hours" validate:"required,gt=0"`
	Mode              string  `json:"mode" validate:"required,oneof=online home"`
	PricePerHour      float64 `json:"price_per_hour" validate:"required,gt=0"`
	Address           string  `json:"address,omitempty"`
	City              string  `json:"city,omitempty"`
	Pincode           string  `json:"pincode,omitempty"`
	StudentNotes      string  `json:"student_notes,omitempty"`
	IsTrial           bool    `json:"is_trial,omitempty"`
	IsRecurring       bool    `json:"is_recurring,omitempty"`
	RecurrencePattern string  `json:"recurrence_pattern,omitempty" validate:"omitempty,oneof=daily weekly biweekly monthly"`
	RecurrenceEndDate string  `json:"recurrence_end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func CreateBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tutorID, _ := uuid.Parse(req.TutorID)
	subjectID, _ := uuid.Parse(req.SubjectID)

	var tutorProfile models.TutorProfile
	if err := database.DB.Preload("User").First(&tutorProfile, "user_id = ?", tutorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
	}
	if !tutorProfile.IsVerified || tutorProfile.VerificationStatus != models.VerificationApproved {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tutor is not accepting bookings yet"})
	}

	lessonDate, _ := time.Parse("2006-01-02", req.LessonDate)

	var recurrenceEnd *time.Time
	if req.RecurrenceEndDate != "" {
		end, _ := time.Parse("2006-01-02", req.RecurrenceEndDate)
		recurrenceEnd = &end
	}

	commissionRate := config.CommissionRate()

	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// The first trial lesson with a tutor is on the house.
		trialIsFree := false
		if req.IsTrial {
			var prior int64
			if err := tx.Model(&models.Booking{}).
				Where("student_id = ? AND tutor_id = ?", studentID, tutorID).
				Count(&prior).Error; err != nil {
				return err
			}
			trialIsFree = prior == 0
		}

		booking = models.Booking{
			StudentID:         studentID,
			TutorID:           tutorID,
			SubjectID:         subjectID,
			Status:            models.BookingPending,
			Mode:              models.LessonMode(req.Mode),
			LessonDate:        lessonDate,
			LessonTime:        req.LessonTime,
			DurationHours:     req.DurationHours,
			PricePerHour:      req.PricePerHour,
			CommissionRate:    commissionRate,
			Address:           req.Address,
			City:              req.City,
			Pincode:           req.Pincode,
			StudentNotes:      req.StudentNotes,
			IsTrial:           req.IsTrial,
			TrialIsFree:       trialIsFree,
			IsRecurring:       req.IsRecurring,
			RecurrencePattern: models.RecurrencePattern(req.RecurrencePattern),
			RecurrenceEndDate: recurrenceEnd,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		if booking.IsRecurring && booking.RecurrencePattern != "" {
			if err := createRecurringBookings(tx, &booking); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}

	go notifications.SendEmail(tutorProfile.User.FullName, tutorProfile.User.Email, "New Booking Request",
		fmt.Sprintf("<h1>New Booking Request</h1><p>A student has requested a lesson on %s at %s. Review it in your dashboard.</p>", req.LessonDate, req.LessonTime))

	return c.Status(fiber.StatusCreated).JSON(booking)
}

// createRecurringBookings generates the pending children of a recurring
// parent inside the caller's transaction.
func createRecurringBookings(tx *gorm.DB, parent *models.Booking) error {
	lessonTime, err := time.Parse("15:04", parent.LessonTime)
	if err != nil {
		return err
	}
	parentStart := time.Date(
		parent.LessonDate.Year(), parent.LessonDate.Month(), parent.LessonDate.Day(),
		lessonTime.Hour(), lessonTime.Minute(), 0, 0, parent.LessonDate.Location(),
	)

	for _, occurrence := range services.ExpandRecurrence(parentStart, parent.RecurrencePattern, parent.RecurrenceEndDate) {
		child := models.Booking{
			StudentID:       parent.StudentID,
			TutorID:         parent.TutorID,
			SubjectID:       parent.SubjectID,
			Status:          models.BookingPending,
			Mode:            parent.Mode,
			LessonDate:      occurrence.Truncate(24 * time.Hour),
			LessonTime:      occurrence.Format("15:04"),
			DurationHours:   parent.DurationHours,
			PricePerHour:    parent.PricePerHour,
			CommissionRate:  parent.CommissionRate,
			Address:         parent.Address,
			City:            parent.City,
			Pincode:         parent.Pincode,
			IsRecurring:     true,
			ParentBookingID: &parent.ID,
		}
		if err := tx.Create(&child).Error; err != nil {
			return err
		}
	}
	return nil
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Where("student_id = ? OR tutor_id = ?", userID, userID).
		Preload("Subject").Preload("Student").Preload("Tutor").
		Order("lesson_date desc, lesson_time desc").
		Find(&bookings)

	return c.JSON(bookings)
}

func GetBookingDetail(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var booking models.Booking
	if err := database.DB.Preload("Subject").Preload("Student").Preload("Tutor").First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.StudentID != userID && booking.TutorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	var lesson *models.Lesson
	var found models.Lesson
	if err := database.DB.First(&found, "booking_id = ?", booking.ID).Error; err == nil {
		lesson = &found
	}

	var children []models.Booking
	if booking.IsRecurring && booking.ParentBookingID == nil {
		database.DB.Where("parent_booking_id = ?", booking.ID).Order("lesson_date asc").Find(&children)
	}

	return c.JSON(fiber.Map{
		"booking":            booking,
		"lesson":             lesson,
		"recurring_bookings": children,
	})
}

func AcceptBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	tutorID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error; err != nil {
			return errors.New("booking not found")
		}
		if booking.TutorID != tutorID {
			return errors.New("you are not the tutor for this booking")
		}
		if booking.Status != models.BookingPending {
			return errors.New("this booking cannot be accepted")
		}

		now := time.Now()
		booking.Status = models.BookingAccepted
		booking.AcceptedAt = &now
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}

		// A recurring parent carries its still-pending children with it.
		if booking.IsRecurring && booking.ParentBookingID == nil {
			if err := tx.Model(&models.Booking{}).
				Where("parent_booking_id = ? AND status = ?", booking.ID, models.BookingPending).
				Updates(map[string]interface{}{"status": models.BookingAccepted, "accepted_at": now}).Error; err != nil {
				return err
			}
		}

		// Nothing to collect for a free trial.
		if booking.TrialIsFree {
			return nil
		}
		_, err := services.CreatePaymentFromBooking(tx, &booking)
		return err
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.User
	if database.DB.First(&student, "id = ?", booking.StudentID).Error == nil {
		go notifications.SendEmail(student.FullName, student.Email, "Booking Accepted!",
			"<h1>Booking Accepted</h1><p>Your tutor has accepted your booking request. See your dashboard for details.</p>")
	}

	return c.JSON(fiber.Map{"message": "Booking accepted", "booking": booking})
}

func RejectBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	tutorID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error; err != nil {
			return errors.New("booking not found")
		}
		if booking.TutorID != tutorID {
			return errors.New("you are not the tutor for this booking")
		}
		if booking.Status != models.BookingPending {
			return errors.New("this booking cannot be rejected")
		}

		booking.Status = models.BookingRejected
		return tx.Save(&booking).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.User
	if database.DB.First(&student, "id = ?", booking.StudentID).Error == nil {
		go notifications.SendEmail(student.FullName, student.Email, "Booking Declined",
			"<h1>Booking Declined</h1><p>Unfortunately the tutor declined your booking request. Try another time slot or browse more tutors.</p>")
	}

	return c.JSON(fiber.Map{"message": "Booking rejected"})
}

func CancelBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error; err != nil {
			return errors.New("booking not found")
		}
		if booking.StudentID != userID && booking.TutorID != userID {
			return errors.New("access denied")
		}
		if booking.Status != models.BookingAccepted {
			return errors.New("only accepted bookings can be cancelled")
		}

		now := time.Now()
		booking.Status = models.BookingCancelled
		booking.CancelledAt = &now
		return tx.Save(&booking).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Booking cancelled"})
}

type CompleteLessonRequest struct {
	TopicsCovered    string `json:"topics_covered" validate:"required"`
	HomeworkAssigned string `json:"homework_assigned,omitempty"`
	StudentProgress  string `json:"student_progress,omitempty"`
	StudentAttended  *bool  `json:"student_attended,omitempty"`
	TutorAttended    *bool  `json:"tutor_attended,omitempty"`
}

// CompleteLesson marks an accepted booking as done, records the lesson and
// attempts wallet settlement of the pending payment. A short wallet balance
// never blocks completion; it is surfaced as a warning instead.
func CompleteLesson(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var req CompleteLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	var warning string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Subject").First(&booking, "id = ?", bookingID).Error; err != nil {
			return errors.New("booking not found")
		}
		if booking.StudentID != userID && booking.TutorID != userID {
			return errors.New("access denied")
		}
		if booking.Status != models.BookingAccepted {
			return errors.New("only accepted bookings can be completed")
		}

		now := time.Now()

		var lesson models.Lesson
		err := tx.Where("booking_id = ?", booking.ID).First(&lesson).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			lesson = models.Lesson{BookingID: booking.ID}
		} else if err != nil {
			return err
		}
		lesson.TopicsCovered = req.TopicsCovered
		lesson.HomeworkAssigned = req.HomeworkAssigned
		lesson.StudentProgress = req.StudentProgress
		lesson.StudentAttended = req.StudentAttended == nil || *req.StudentAttended
		lesson.TutorAttended = req.TutorAttended == nil || *req.TutorAttended
		lesson.IsCompleted = true
		lesson.CompletedAt = &now
		if err := tx.Save(&lesson).Error; err != nil {
			return err
		}

		booking.Status = models.BookingCompleted
		booking.CompletedAt = &now
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}

		warning = settlePaymentFromWallet(tx, &booking, now)
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var tutor models.User
	if database.DB.First(&tutor, "id = ?", booking.TutorID).Error == nil {
		go notifications.SendEmail(tutor.FullName, tutor.Email, "Lesson Completed",
			fmt.Sprintf("<h1>Lesson Completed</h1><p>Your %s lesson has been marked as completed. The payout will be released after the holding period.</p>", booking.Subject.Name))
	}

	response := fiber.Map{"message": "Lesson marked as completed", "booking": booking}
	if warning != "" {
		response["warning"] = warning
	}
	return c.JSON(response)
}

// settlePaymentFromWallet tries to pay the pending payment for a completed
// booking out of the student's wallet. Returns a warning string rather than
// an error: settlement problems must not roll back the completion.
func settlePaymentFromWallet(tx *gorm.DB, booking *models.Booking, now time.Time) string {
	var payment models.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ? AND status IN ?", booking.ID, []models.PaymentStatus{models.PaymentPending, models.PaymentProcessing}).
		First(&payment).Error
	if err != nil {
		// No pending payment is normal for free trials and already-settled
		// bookings. Anything else must not pass as "nothing to settle".
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ""
		}
		log.Printf("⚠️ Wallet settlement lookup failed for booking %s: %v", booking.ID, err)
		return "Lesson completed, but payment processing encountered an issue."
	}

	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", booking.StudentID).First(&wallet).Error; err != nil {
		return "Lesson completed, but no wallet was found to settle the payment."
	}

	description := fmt.Sprintf("Payment for %s class on %s", booking.Subject.Name, booking.LessonDate.Format("2006-01-02"))
	if err := services.SettleFromWallet(tx, &payment, &wallet, description, now); err != nil {
		if errors.Is(err, models.ErrInsufficientBalance) {
			return fmt.Sprintf("Insufficient wallet balance (₹%.2f). Please recharge your wallet to complete payment.", wallet.Balance)
		}
		return "Lesson completed, but payment processing encountered an issue."
	}
	return ""
}
