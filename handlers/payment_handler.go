package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/payments"
	"github.com/ranktutor/ranktutor/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// minWalletRecharge is the smallest accepted wallet top-up in INR.
const minWalletRecharge = 3000

func GetMyPayments(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var paymentList []models.Payment
	database.DB.
		Where("student_id = ? OR tutor_id = ?", userID, userID).
		Preload("Booking").Preload("Booking.Subject").
		Order("created_at desc").
		Find(&paymentList)

	return c.JSON(paymentList)
}

func GetPaymentDetail(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	paymentID := c.Params("paymentId")

	var payment models.Payment
	if err := database.DB.Preload("Booking").Preload("Booking.Subject").First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	if payment.StudentID != userID && payment.TutorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	var invoice *models.Invoice
	var found models.Invoice
	if err := database.DB.First(&found, "payment_id = ?", payment.ID).Error; err == nil {
		invoice = &found
	}

	return c.JSON(fiber.Map{"payment": payment, "invoice": invoice})
}

// InitiateGatewayPayment opens a gateway order for a pending payment so the
// student can pay by card or UPI instead of the wallet.
func InitiateGatewayPayment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	paymentID := c.Params("paymentId")

	var payment models.Payment
	var order *payments.RazorpayOrder
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return errors.New("payment not found")
		}
		if payment.StudentID != userID {
			return errors.New("access denied")
		}
		if payment.Status != models.PaymentPending {
			return errors.New("payment is not awaiting settlement")
		}

		var err error
		order, err = payments.CreateRazorpayOrder(payment.Amount, payment.ID.String(), map[string]string{
			"purpose":    "lesson_payment",
			"payment_id": payment.ID.String(),
		})
		if err != nil {
			log.Printf("🔥 Razorpay order creation failed: %v", err)
			return errors.New("could not reach the payment gateway")
		}

		payment.Status = models.PaymentProcessing
		payment.ProviderOrderID = &order.ID
		return tx.Save(&payment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"order": order, "payment": payment})
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// VerifyGatewayPayment finalizes a gateway checkout after the client returns
// with the signed confirmation.
func VerifyGatewayPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !payments.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment signature"})
	}

	var payment models.Payment
	var invoice *models.Invoice
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("provider_order_id = ?", req.RazorpayOrderID).First(&payment).Error; err != nil {
			return errors.New("payment not found for this order")
		}
		var err error
		invoice, err = services.CompleteGatewayPayment(tx, &payment, req.RazorpayPaymentID, time.Now())
		return err
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// Render only after the transaction has committed, so the invoice row is
	// visible to the background goroutine.
	go services.RenderAndStoreInvoice(invoice.ID)

	return c.JSON(fiber.Map{"message": "Payment confirmed", "payment": payment})
}

// RazorpayWebhook is the server-to-server confirmation path. It is idempotent:
// a payment already settled by the client callback is left alone.
func RazorpayWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if !payments.VerifyWebhookSignature(body, c.Get("X-Razorpay-Signature")) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	var event struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID      string `json:"id"`
					OrderID string `json:"order_id"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}
	if event.Event != "payment.captured" {
		return c.SendStatus(fiber.StatusOK)
	}

	orderID := event.Payload.Payment.Entity.OrderID
	transactionID := event.Payload.Payment.Entity.ID

	var invoice *models.Invoice
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("provider_order_id = ?", orderID).First(&payment).Error
		if err == nil {
			if payment.Status == models.PaymentCompleted {
				return nil
			}
			invoice, err = services.CompleteGatewayPayment(tx, &payment, transactionID, time.Now())
			return err
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return settleRechargeOrder(tx, orderID, transactionID)
	})
	if err != nil {
		log.Printf("⚠️ Webhook settlement failed for order %s: %v", orderID, err)
	}
	if invoice != nil {
		go services.RenderAndStoreInvoice(invoice.ID)
	}

	return c.SendStatus(fiber.StatusOK)
}

// settleRechargeOrder credits a wallet top-up order inside the caller's
// transaction. A second capture event for the same order is a no-op.
func settleRechargeOrder(tx *gorm.DB, orderID, transactionID string) error {
	var recharge models.WalletRecharge
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("provider_order_id = ?", orderID).First(&recharge).Error; err != nil {
		return err
	}

	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", recharge.UserID).First(&wallet).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		wallet = models.Wallet{UserID: recharge.UserID}
		if err := tx.Create(&wallet).Error; err != nil {
			return err
		}
	}

	if err := services.SettleRecharge(tx, &recharge, &wallet, transactionID); err != nil {
		if errors.Is(err, services.ErrRechargeAlreadySettled) {
			return nil
		}
		return err
	}
	return nil
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

// RequestRefund records a refund request on a settled payment and opens a
// payment dispute for an admin to act on. The money does not move here.
func RequestRefund(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	paymentID := c.Params("paymentId")

	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var dispute models.Dispute
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return errors.New("payment not found")
		}
		if payment.StudentID != userID {
			return errors.New("access denied")
		}
		if payment.Status != models.PaymentCompleted && payment.Status != models.PaymentOnHold {
			return errors.New("only settled payments can be refunded")
		}

		payment.RefundReason = &req.Reason
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		dispute = models.Dispute{
			BookingID:   payment.BookingID,
			RaisedBy:    userID,
			DisputeType: "payment",
			Description: fmt.Sprintf("Refund requested for payment %s: %s", payment.ID, req.Reason),
			Status:      models.DisputeOpen,
		}
		return tx.Create(&dispute).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Refund request submitted", "dispute": dispute})
}

// ReleaseMyPayment lets a tutor cash out an on-hold payment once the
// cooling period is over. The eligibility check runs on the locked row.
func ReleaseMyPayment(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	paymentID := c.Params("paymentId")

	var payment models.Payment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return errors.New("payment not found")
		}
		if payment.TutorID != userID {
			return errors.New("access denied")
		}
		return services.ReleaseAndPayout(tx, &payment, time.Now())
	})
	if err != nil {
		if errors.Is(err, services.ErrNotEligibleForRelease) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment is still in the holding period"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Payment released", "payment": payment})
}

func GetMyWallet(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var wallet models.Wallet
	if err := database.DB.First(&wallet, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet not found"})
	}

	var transactions []models.WalletTransaction
	database.DB.Where("wallet_id = ?", wallet.ID).Order("created_at desc").Limit(50).Find(&transactions)

	return c.JSON(fiber.Map{"wallet": wallet, "transactions": transactions})
}

type RechargeRequest struct {
	Amount float64 `json:"amount" validate:"required,gte=3000"`
}

// InitiateWalletRecharge opens a gateway order for a wallet top-up.
func InitiateWalletRecharge(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req RechargeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("Minimum recharge amount is ₹%d", minWalletRecharge)})
	}

	order, err := payments.CreateRazorpayOrder(req.Amount, "wallet-"+userID.String(), map[string]string{
		"purpose": "wallet_recharge",
		"user_id": userID.String(),
	})
	if err != nil {
		log.Printf("🔥 Razorpay order creation failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not reach the payment gateway"})
	}

	// The amount is pinned to the order here. Verification credits this row's
	// amount, never whatever the callback claims was paid.
	recharge := models.WalletRecharge{
		UserID:          userID,
		Amount:          req.Amount,
		Status:          "pending",
		ProviderOrderID: order.ID,
	}
	if err := database.DB.Create(&recharge).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record recharge"})
	}

	return c.JSON(fiber.Map{"order": order, "recharge": recharge})
}

type VerifyRechargeRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// VerifyWalletRecharge credits the wallet after the gateway confirms the
// top-up checkout. The checkout signature only binds the order and payment
// ids, so the credited amount comes from the stored recharge order.
func VerifyWalletRecharge(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req VerifyRechargeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !payments.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment signature"})
	}

	var wallet models.Wallet
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var recharge models.WalletRecharge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("provider_order_id = ?", req.RazorpayOrderID).First(&recharge).Error; err != nil {
			return errors.New("recharge not found for this order")
		}
		if recharge.UserID != userID {
			return errors.New("access denied")
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			wallet = models.Wallet{UserID: userID}
			if err := tx.Create(&wallet).Error; err != nil {
				return err
			}
		}
		return services.SettleRecharge(tx, &recharge, &wallet, req.RazorpayPaymentID)
	})
	if err != nil {
		if errors.Is(err, services.ErrRechargeAlreadySettled) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This recharge has already been credited"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Wallet recharged", "balance": wallet.Balance})
}

// GetTutorEarnings summarizes a tutor's settled and held payouts.
func GetTutorEarnings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	type earningsRow struct {
		Status models.PaymentStatus
		Total  float64
		Count  int64
	}
	var rows []earningsRow
	database.DB.Model(&models.Payment{}).
		Select("status, COALESCE(SUM(tutor_payout), 0) as total, COUNT(*) as count").
		Where("tutor_id = ?", userID).
		Group("status").
		Scan(&rows)

	summary := fiber.Map{
		"total_earned": 0.0,
		"on_hold":      0.0,
		"pending":      0.0,
	}
	for _, row := range rows {
		switch row.Status {
		case models.PaymentCompleted:
			summary["total_earned"] = row.Total
		case models.PaymentOnHold:
			summary["on_hold"] = row.Total
		case models.PaymentPending, models.PaymentProcessing:
			summary["pending"] = summary["pending"].(float64) + row.Total
		}
	}

	var recent []models.Payment
	database.DB.
		Where("tutor_id = ?", userID).
		Preload("Booking").Preload("Booking.Subject").
		Order("created_at desc").Limit(20).
		Find(&recent)

	return c.JSON(fiber.Map{"summary": summary, "recent_payments": recent})
}
