package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// CreateReview lets a student rate a completed lesson once. The tutor's
// cached rating and quality score are refreshed in the same transaction.
func CreateReview(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var review models.Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", req.BookingID).Error; err != nil {
			return errors.New("booking not found")
		}
		if booking.StudentID != userID {
			return errors.New("you can only review your own lessons")
		}
		if booking.Status != models.BookingCompleted {
			return errors.New("only completed lessons can be reviewed")
		}

		var existing int64
		tx.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&existing)
		if existing > 0 {
			return errors.New("this lesson has already been reviewed")
		}

		review = models.Review{
			BookingID:  booking.ID,
			StudentID:  booking.StudentID,
			TutorID:    booking.TutorID,
			Rating:     req.Rating,
			Comment:    req.Comment,
			IsApproved: true,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var tutorProfile models.TutorProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tutorProfile, "user_id = ?", booking.TutorID).Error; err != nil {
			return err
		}
		return services.RefreshTutorRating(tx, tutorProfile.ID)
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func GetTutorReviews(c *fiber.Ctx) error {
	tutorID := c.Params("tutorId")

	var reviews []models.Review
	database.DB.
		Preload("Student").
		Where("tutor_id = ? AND is_approved = true", tutorID).
		Order("created_at desc").
		Find(&reviews)

	return c.JSON(reviews)
}

type RaiseDisputeRequest struct {
	BookingID   string `json:"booking_id" validate:"required,uuid"`
	DisputeType string `json:"dispute_type" validate:"required,oneof=payment service cancellation safety other"`
	Description string `json:"description" validate:"required,min=10"`
}

// RaiseDispute opens a dispute on a booking the caller is part of.
func RaiseDispute(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req RaiseDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", req.BookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.StudentID != userID && booking.TutorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	dispute := models.Dispute{
		BookingID:   booking.ID,
		RaisedBy:    userID,
		DisputeType: req.DisputeType,
		Description: req.Description,
		Status:      models.DisputeOpen,
	}
	if err := database.DB.Create(&dispute).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to raise dispute"})
	}

	return c.Status(fiber.StatusCreated).JSON(dispute)
}

func GetMyDisputes(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var disputes []models.Dispute
	database.DB.
		Preload("Booking").Preload("Booking.Subject").
		Where("raised_by = ?", userID).
		Order("created_at desc").
		Find(&disputes)

	return c.JSON(disputes)
}
