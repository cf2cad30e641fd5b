package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// premiumPlans maps a purchasable visibility plan to its price in INR.
// Every plan runs for thirty days.
var premiumPlans = map[string]float64{
	"boost":    299,
	"featured": 999,
	"premium":  1999,
}

const premiumPlanDuration = 30 * 24 * time.Hour

type TutorProfileRequest struct {
	Headline          *string  `json:"headline,omitempty" validate:"omitempty,max=150"`
	Bio               string   `json:"bio,omitempty"`
	Education         string   `json:"education,omitempty"`
	HourlyRate        *float64 `json:"hourly_rate,omitempty" validate:"omitempty,gt=0"`
	TeachingLevels    string   `json:"teaching_levels,omitempty" validate:"omitempty,oneof=primary middle secondary senior_secondary undergraduate graduate all"`
	City              string   `json:"city,omitempty"`
	State             string   `json:"state,omitempty"`
	Pincode           string   `json:"pincode,omitempty"`
	ServiceAreas      string   `json:"service_areas,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude         *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	IsAvailableOnline *bool    `json:"is_available_online,omitempty"`
	IsAvailableHome   *bool    `json:"is_available_home,omitempty"`
	MaxTravelDistance *int     `json:"max_travel_distance,omitempty" validate:"omitempty,gt=0"`
	YearsOfExperience *int     `json:"years_of_experience,omitempty" validate:"omitempty,gte=0"`
	Certifications    string   `json:"certifications,omitempty"`
}

func UpdateTutorProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req TutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var profile models.TutorProfile
	if err := database.DB.Preload("Subjects").First(&profile, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
	}

	if req.Headline != nil {
		profile.Headline = req.Headline
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}
	if req.Education != "" {
		profile.Education = req.Education
	}
	if req.HourlyRate != nil {
		profile.HourlyRate = req.HourlyRate
	}
	if req.TeachingLevels != "" {
		profile.TeachingLevels = models.TeachingLevel(req.TeachingLevels)
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
	if req.ServiceAreas != "" {
		profile.ServiceAreas = req.ServiceAreas
	}
	if req.Latitude != nil {
		profile.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		profile.Longitude = req.Longitude
	}
	if req.IsAvailableOnline != nil {
		profile.IsAvailableOnline = *req.IsAvailableOnline
	}
	if req.IsAvailableHome != nil {
		profile.IsAvailableHome = *req.IsAvailableHome
	}
	if req.MaxTravelDistance != nil {
		profile.MaxTravelDistance = *req.MaxTravelDistance
	}
	if req.YearsOfExperience != nil {
		profile.YearsOfExperience = *req.YearsOfExperience
	}
	if req.Certifications != "" {
		profile.Certifications = req.Certifications
	}

	profile.ProfileComplete = profile.Bio != "" && profile.Education != "" &&
		profile.HourlyRate != nil && len(profile.Subjects) > 0 && profile.City != ""

	if err := database.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(profile)
}

func GetMyTutorProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var profile models.TutorProfile
	if err := database.DB.
		Preload("User").Preload("Subjects").Preload("PremiumSubscriptions").
		First(&profile, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"quality_score":       services.QualityScore(&profile),
		"verification_badges": profile.VerificationBadges(),
	})
}

type SetSubjectsRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,min=1,dive,uuid"`
}

// SetTutorSubjects replaces the tutor's taught subjects with the given set.
func SetTutorSubjects(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req SetSubjectsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var profile models.TutorProfile
	if err := database.DB.First(&profile, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
	}

	var subjects []*models.Subject
	if err := database.DB.Where("id IN ?", req.SubjectIDs).Find(&subjects).Error; err != nil || len(subjects) != len(req.SubjectIDs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "One or more subjects do not exist"})
	}

	if err := database.DB.Model(&profile).Association("Subjects").Replace(subjects); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update subjects"})
	}

	return c.JSON(fiber.Map{"message": "Subjects updated", "subjects": subjects})
}

func ListSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	database.DB.Order("name asc").Find(&subjects)
	return c.JSON(subjects)
}

type AvailabilitySlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

func AddAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req AvailabilitySlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.StartTime >= req.EndTime {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Start time must be before end time"})
	}

	slot := models.AvailabilitySlot{
		TutorID:     userID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: true,
	}
	if err := database.DB.Create(&slot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create availability slot"})
	}

	return c.Status(fiber.StatusCreated).JSON(slot)
}

func GetTutorAvailability(c *fiber.Ctx) error {
	tutorID := c.Params("tutorId")

	var slots []models.AvailabilitySlot
	database.DB.
		Where("tutor_id = ? AND is_available = true", tutorID).
		Order("day_of_week asc, start_time asc").
		Find(&slots)

	return c.JSON(slots)
}

func DeleteAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	slotID := c.Params("slotId")

	result := database.DB.Where("id = ? AND tutor_id = ?", slotID, userID).Delete(&models.AvailabilitySlot{})
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability slot not found"})
	}

	return c.JSON(fiber.Map{"message": "Availability slot removed"})
}

// SearchTutors is the public tutor search. Only approved tutors are listed.
// When the caller is a logged-in student with a profile, results also carry a
// personal match score that feeds the ordering after paid visibility.
func SearchTutors(c *fiber.Ctx) error {
	query := database.DB.
		Preload("User").Preload("Subjects").Preload("PremiumSubscriptions").
		Where("is_verified = true AND verification_status = ?", models.VerificationApproved)

	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Joins("JOIN tutor_subjects ON tutor_subjects.tutor_profile_id = tutor_profiles.id").
			Where("tutor_subjects.subject_id = ?", subjectID)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("teaching_levels IN ?", []string{level, string(models.LevelAll)})
	}
	switch c.Query("mode") {
	case "online":
		query = query.Where("is_available_online = true")
	case "home":
		query = query.Where("is_available_home = true")
	}
	if minRating := c.Query("min_rating"); minRating != "" {
		if rating, err := strconv.ParseFloat(minRating, 64); err == nil {
			query = query.Where("average_rating >= ?", rating)
		}
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if price, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("hourly_rate IS NOT NULL AND hourly_rate <= ?", price)
		}
	}
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = true")
	}
	if c.Query("verified_badges") == "true" {
		query = query.Where("has_academic_verification = true OR has_id_verification = true OR has_police_verification = true OR has_background_check = true")
	}

	var tutors []*models.TutorProfile
	if err := query.Find(&tutors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Search failed"})
	}

	// Geographic narrowing for home tutoring.
	if latStr, lonStr := c.Query("latitude"), c.Query("longitude"); latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr == nil && lonErr == nil {
			radius := 10.0
			if r, err := strconv.ParseFloat(c.Query("radius", "10"), 64); err == nil && r > 0 {
				radius = r
			}
			tutors = services.FilterByProximity(tutors, &lat, &lon, radius)
		}
	}

	student := studentProfileFromContext(c)
	scored := make([]services.ScoredTutor, 0, len(tutors))
	for _, tutor := range tutors {
		entry := services.ScoredTutor{Tutor: tutor}
		if student != nil {
			entry.MatchScore = services.MatchScore(tutor, student)
		}
		scored = append(scored, entry)
	}
	services.SortSearchResults(scored, student != nil, time.Now())

	return c.JSON(fiber.Map{"count": len(scored), "results": scored})
}

// studentProfileFromContext loads the caller's student profile when the
// request carries a valid token. Anonymous callers get nil.
func studentProfileFromContext(c *fiber.Ctx) *models.StudentProfile {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		return nil
	}

	var profile models.StudentProfile
	if err := database.DB.Preload("PreferredSubjects").First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil
	}
	return &profile
}

func GetTutorDetail(c *fiber.Ctx) error {
	tutorID := c.Params("tutorId")

	var profile models.TutorProfile
	if err := database.DB.
		Preload("User").Preload("Subjects").Preload("PremiumSubscriptions").
		First(&profile, "user_id = ? OR id = ?", tutorID, tutorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
	}
	if !profile.IsVerified || profile.VerificationStatus != models.VerificationApproved {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
	}

	var reviews []models.Review
	database.DB.
		Preload("Student").
		Where("tutor_id = ? AND is_approved = true", profile.UserID).
		Order("created_at desc").Limit(20).
		Find(&reviews)

	response := fiber.Map{
		"profile":             profile,
		"reviews":             reviews,
		"verification_badges": profile.VerificationBadges(),
	}
	if student := studentProfileFromContext(c); student != nil {
		response["match_score"] = services.MatchScore(&profile, student)
	}

	return c.JSON(response)
}

type PremiumPurchaseRequest struct {
	PlanType string `json:"plan_type" validate:"required,oneof=boost featured premium"`
}

// PurchasePremiumFeature buys a thirty-day visibility plan out of the
// tutor's wallet and activates it immediately.
func PurchasePremiumFeature(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req PremiumPurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	price := premiumPlans[req.PlanType]

	var subscription models.PremiumSubscription
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.TutorProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile, "user_id = ?", userID).Error; err != nil {
			return errors.New("tutor profile not found")
		}
		var active int64
		tx.Model(&models.PremiumSubscription{}).
			Where("tutor_id = ? AND subscription_type = ? AND is_active = true AND end_date > ?", profile.ID, req.PlanType, time.Now()).
			Count(&active)
		if active > 0 {
			return errors.New("an active " + req.PlanType + " plan already exists")
		}

		var wallet models.Wallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// Tutors get a wallet on their first premium purchase.
			wallet = models.Wallet{UserID: userID}
			if err := tx.Create(&wallet).Error; err != nil {
				return err
			}
		}
		if err := wallet.DeductBalance(tx, price, "Premium plan: "+req.PlanType, nil); err != nil {
			return err
		}

		now := time.Now()
		payment := models.PremiumPayment{
			UserID:      userID,
			PaymentType: req.PlanType,
			Amount:      price,
			Status:      "completed",
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		subscription = models.PremiumSubscription{
			TutorID:          profile.ID,
			SubscriptionType: req.PlanType,
			AmountPaid:       price,
			StartDate:        now,
			EndDate:          now.Add(premiumPlanDuration),
			IsActive:         true,
		}
		if err := tx.Create(&subscription).Error; err != nil {
			return err
		}

		switch req.PlanType {
		case "boost":
			boostUntil := now.Add(premiumPlanDuration)
			profile.PremiumBoostUntil = &boostUntil
			profile.BoostCount++
		case "featured":
			profile.IsFeatured = true
		}
		return tx.Save(&profile).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientBalance) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Insufficient wallet balance for this plan"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Plan activated", "subscription": subscription})
}
