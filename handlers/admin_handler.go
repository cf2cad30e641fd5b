package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/notifications"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func adminID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

func ListPendingTutors(c *fiber.Ctx) error {
	var tutors []models.TutorProfile
	database.DB.
		Preload("User").Preload("Subjects").
		Where("verification_status IN ?", []models.VerificationStatus{models.VerificationPending, models.VerificationUnderReview}).
		Order("created_at asc").
		Find(&tutors)

	return c.JSON(tutors)
}

type ApproveTutorRequest struct {
	AcademicVerified   bool   `json:"academic_verified"`
	IDVerified         bool   `json:"id_verified"`
	PoliceVerified     bool   `json:"police_verified"`
	BackgroundChecked  bool   `json:"background_checked"`
	ReviewNotes        string `json:"review_notes,omitempty"`
	RecommendedChanges string `json:"recommended_changes,omitempty"`
}

// ApproveTutorVerification marks a tutor as verified, stamps the badges the
// reviewed documents support and records an approval audit.
func ApproveTutorVerification(c *fiber.Ctx) error {
	reviewerID := adminID(c)
	tutorProfileID := c.Params("tutorId")

	var req ApproveTutorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var tutor models.TutorProfile
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Subjects").Preload("User").First(&tutor, "id = ?", tutorProfileID).Error; err != nil {
			return errors.New("tutor profile not found")
		}
		if tutor.VerificationStatus == models.VerificationApproved {
			return errors.New("tutor is already approved")
		}

		tutor.IsVerified = true
		tutor.VerificationStatus = models.VerificationApproved
		tutor.HasAcademicVerification = req.AcademicVerified
		tutor.HasIDVerification = req.IDVerified
		tutor.HasPoliceVerification = req.PoliceVerified
		tutor.HasBackgroundCheck = req.BackgroundChecked

		_, err := services.RecordQualityAudit(tx, &tutor, "approval", req.ReviewNotes, req.RecommendedChanges, &reviewerID, nil, true)
		return err
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	go notifications.SendEmail(tutor.User.FullName, tutor.User.Email, "Your RankTutor profile is live!",
		"<h1>Verification Approved</h1><p>Your tutor profile has been verified. Students can now find and book you.</p>")

	return c.JSON(fiber.Map{"message": "Tutor approved", "tutor": tutor})
}

type RejectTutorRequest struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

func RejectTutorVerification(c *fiber.Ctx) error {
	reviewerID := adminID(c)
	tutorProfileID := c.Params("tutorId")

	var req RejectTutorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var tutor models.TutorProfile
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Subjects").Preload("User").First(&tutor, "id = ?", tutorProfileID).Error; err != nil {
			return errors.New("tutor profile not found")
		}

		tutor.IsVerified = false
		tutor.VerificationStatus = models.VerificationRejected

		_, err := services.RecordQualityAudit(tx, &tutor, "approval", req.Reason, "Resubmit documents after addressing the issues", &reviewerID, nil, false)
		return err
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	go notifications.SendEmail(tutor.User.FullName, tutor.User.Email, "Verification Update",
		fmt.Sprintf("<h1>Verification Not Approved</h1><p>%s</p>", req.Reason))

	return c.JSON(fiber.Map{"message": "Tutor verification rejected"})
}

type ConductAuditRequest struct {
	IssuesFound     string   `json:"issues_found,omitempty"`
	Recommendations string   `json:"recommendations,omitempty"`
	ScoreOverride   *float64 `json:"score_override,omitempty" validate:"omitempty,gte=0,lte=100"`
	MarkResolved    bool     `json:"mark_resolved"`
}

// ConductQualityAudit runs a manual audit on a tutor. The score defaults to
// the recomputed value; an explicit override wins when given.
func ConductQualityAudit(c *fiber.Ctx) error {
	auditorID := adminID(c)
	tutorProfileID := c.Params("tutorId")

	var req ConductAuditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var audit *models.QualityAudit
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var tutor models.TutorProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Subjects").First(&tutor, "id = ?", tutorProfileID).Error; err != nil {
			return errors.New("tutor profile not found")
		}

		var err error
		audit, err = services.RecordQualityAudit(tx, &tutor, "manual", req.IssuesFound, req.Recommendations, &auditorID, req.ScoreOverride, req.MarkResolved)
		return err
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(audit)
}

func GetTutorAuditHistory(c *fiber.Ctx) error {
	tutorProfileID := c.Params("tutorId")

	var audits []models.QualityAudit
	database.DB.
		Where("tutor_id = ?", tutorProfileID).
		Order("created_at desc").
		Find(&audits)

	return c.JSON(audits)
}

// ListLowQualityTutors surfaces tutors flagged for intervention.
func ListLowQualityTutors(c *fiber.Ctx) error {
	var tutors []models.TutorProfile
	database.DB.
		Preload("User").
		Where("intervention_required = true OR (quality_score > 0 AND quality_score < 50)").
		Order("quality_score asc").
		Find(&tutors)

	return c.JSON(tutors)
}

func ListDisputes(c *fiber.Ctx) error {
	query := database.DB.Preload("Booking").Preload("Raiser")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var disputes []models.Dispute
	query.Order("created_at asc").Find(&disputes)

	return c.JSON(disputes)
}

type ResolveDisputeRequest struct {
	Resolution   string `json:"resolution" validate:"required,min=10"`
	RefundWallet bool   `json:"refund_wallet"`
	Close        bool   `json:"close"`
}

// ResolveDispute records the outcome, optionally refunding a wallet payment
// back to the student.
func ResolveDispute(c *fiber.Ctx) error {
	resolverID := adminID(c)
	disputeID := c.Params("disputeId")

	var req ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var dispute models.Dispute
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&dispute, "id = ?", disputeID).Error; err != nil {
			return errors.New("dispute not found")
		}
		if dispute.Status == models.DisputeResolved || dispute.Status == models.DisputeClosed {
			return errors.New("dispute is already settled")
		}

		now := time.Now()
		dispute.Resolution = req.Resolution
		dispute.ResolvedBy = &resolverID
		dispute.ResolvedAt = &now
		dispute.Status = models.DisputeResolved
		if req.Close {
			dispute.Status = models.DisputeClosed
		}
		if err := tx.Save(&dispute).Error; err != nil {
			return err
		}

		if req.RefundWallet {
			return refundWalletPayment(tx, dispute.BookingID, now)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Dispute resolved", "dispute": dispute})
}

// refundWalletPayment reverses a held wallet payment for a disputed booking:
// the payment is marked refunded and the student's wallet credited back.
// Released payments are past the point of automatic reversal.
func refundWalletPayment(tx *gorm.DB, bookingID uuid.UUID, now time.Time) error {
	var payment models.Payment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ? AND status = ?", bookingID, models.PaymentOnHold).
		First(&payment).Error; err != nil {
		return errors.New("no held payment to refund for this booking")
	}

	payment.Status = models.PaymentRefunded
	if err := tx.Save(&payment).Error; err != nil {
		return err
	}

	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", payment.StudentID).First(&wallet).Error; err != nil {
		return err
	}
	return wallet.AddBalance(tx, payment.Amount, fmt.Sprintf("Refund for booking %s", payment.BookingID))
}

func ListAllPayments(c *fiber.Ctx) error {
	query := database.DB.Preload("Booking").Preload("Booking.Subject")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var paymentList []models.Payment
	query.Order("created_at desc").Limit(200).Find(&paymentList)

	return c.JSON(paymentList)
}

// AdminReleasePayment force-releases an eligible held payment, going through
// the same locked eligibility check as the tutor's own release action.
func AdminReleasePayment(c *fiber.Ctx) error {
	paymentID := c.Params("paymentId")

	var payment models.Payment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return errors.New("payment not found")
		}
		return services.ReleaseAndPayout(tx, &payment, time.Now())
	})
	if err != nil {
		if errors.Is(err, services.ErrNotEligibleForRelease) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment is not eligible for release"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Payment released", "payment": payment})
}

// RegenerateInvoice re-runs the PDF render for an invoice whose background
// render failed and left file_url empty.
func RegenerateInvoice(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("invoiceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice id"})
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}

	go services.RenderAndStoreInvoice(invoice.ID)
	return c.JSON(fiber.Map{"message": "Invoice render queued", "invoice": invoice})
}

type ModerateReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve flag remove"`
	Reason string `json:"reason,omitempty"`
}

// ModerateReview approves, flags or removes a review. Any change to the
// visible review set refreshes the tutor's cached rating.
func ModerateReview(c *fiber.Ctx) error {
	moderatorID := adminID(c)
	reviewID := c.Params("reviewId")

	var req ModerateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var review models.Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&review, "id = ?", reviewID).Error; err != nil {
			return errors.New("review not found")
		}

		review.ModeratedBy = &moderatorID
		switch req.Action {
		case "approve":
			review.IsApproved = true
			review.IsFlagged = false
			review.FlaggedReason = ""
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		case "flag":
			review.IsApproved = false
			review.IsFlagged = true
			review.FlaggedReason = req.Reason
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		case "remove":
			review.IsApproved = false
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
			if err := tx.Delete(&review).Error; err != nil {
				return err
			}
		}

		var tutorProfile models.TutorProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tutorProfile, "user_id = ?", review.TutorID).Error; err != nil {
			return err
		}
		return services.RefreshTutorRating(tx, tutorProfile.ID)
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Review moderated"})
}

type SubjectRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

func CreateSubject(c *fiber.Ctx) error {
	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	subject := models.Subject{Name: req.Name, Description: req.Description, Icon: req.Icon}
	if err := database.DB.Create(&subject).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Subject already exists"})
	}

	return c.Status(fiber.StatusCreated).JSON(subject)
}

type SetUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetUserActive suspends or reinstates an account.
func SetUserActive(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var req SetUserActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Role.Can(models.CapManagePlatform) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Platform admins cannot be suspended"})
	}

	user.IsActive = req.IsActive
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"message": "User updated", "user": user})
}
