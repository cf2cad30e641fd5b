package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
)

type StudentProfileRequest struct {
	StudentName       string   `json:"student_name,omitempty" validate:"omitempty,max=100"`
	StudentAge        *int     `json:"student_age,omitempty" validate:"omitempty,gt=0,lt=100"`
	GradeLevel        string   `json:"grade_level,omitempty" validate:"omitempty,oneof=primary middle secondary senior_secondary undergraduate graduate"`
	PreferredSubjects []string `json:"preferred_subjects,omitempty" validate:"omitempty,dive,uuid"`
	PreferredMode     string   `json:"preferred_mode,omitempty" validate:"omitempty,oneof=online home both"`
	City              string   `json:"city,omitempty"`
	State             string   `json:"state,omitempty"`
	Pincode           string   `json:"pincode,omitempty"`
	LearningGoals     string   `json:"learning_goals,omitempty"`
}

// UpsertStudentProfile creates the student profile on first call and updates
// it afterwards. Parents use the same endpoint for their child's profile.
func UpsertStudentProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req StudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var profile models.StudentProfile
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			profile = models.StudentProfile{UserID: userID}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}

		if req.StudentName != "" {
			profile.StudentName = req.StudentName
		}
		if req.StudentAge != nil {
			profile.StudentAge = req.StudentAge
		}
		if req.GradeLevel != "" {
			profile.GradeLevel = models.TeachingLevel(req.GradeLevel)
		}
		if req.PreferredMode != "" {
			profile.PreferredMode = models.LessonMode(req.PreferredMode)
		}
		if req.City != "" {
			profile.City = req.City
		}
		if req.State != "" {
			profile.State = req.State
		}
		if req.Pincode != "" {
			profile.Pincode = req.Pincode
		}
		if req.LearningGoals != "" {
			profile.LearningGoals = req.LearningGoals
		}
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		if req.PreferredSubjects != nil {
			var subjects []*models.Subject
			if err := tx.Where("id IN ?", req.PreferredSubjects).Find(&subjects).Error; err != nil {
				return err
			}
			if err := tx.Model(&profile).Association("PreferredSubjects").Replace(subjects); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save student profile"})
	}

	database.DB.Preload("PreferredSubjects").First(&profile, "id = ?", profile.ID)
	return c.JSON(profile)
}

func GetMyStudentProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var profile models.StudentProfile
	if err := database.DB.Preload("User").Preload("PreferredSubjects").First(&profile, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student profile not found"})
	}

	return c.JSON(profile)
}

// GetRecommendedTutors scores the approved tutor pool against the student's
// preferences and returns the best matches for the dashboard.
func GetRecommendedTutors(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var profile models.StudentProfile
	if err := database.DB.Preload("PreferredSubjects").First(&profile, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Complete your student profile to get recommendations"})
	}

	limit := 10
	if l, err := strconv.Atoi(c.Query("limit", "10")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	// Narrow the candidate pool by the student's subjects and mode before
	// scoring. The ranking itself stays in the service.
	query := database.DB.
		Preload("User").Preload("Subjects").Preload("PremiumSubscriptions").
		Where("is_verified = true AND verification_status = ?", models.VerificationApproved)

	if len(profile.PreferredSubjects) > 0 {
		subjectIDs := make([]uuid.UUID, 0, len(profile.PreferredSubjects))
		for _, subject := range profile.PreferredSubjects {
			subjectIDs = append(subjectIDs, subject.ID)
		}
		query = query.
			Joins("JOIN tutor_subjects ON tutor_subjects.tutor_profile_id = tutor_profiles.id").
			Where("tutor_subjects.subject_id IN ?", subjectIDs).
			Distinct("tutor_profiles.*")
	}
	switch profile.PreferredMode {
	case models.ModeOnline:
		query = query.Where("is_available_online = true")
	case models.ModeHome:
		query = query.Where("is_available_home = true")
	}

	var candidates []*models.TutorProfile
	query.Find(&candidates)

	recommendations := services.RecommendTutors(&profile, candidates, limit)
	return c.JSON(fiber.Map{"count": len(recommendations), "results": recommendations})
}
