package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ranktutor/ranktutor/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HoldPeriod is the cooling-off window between a wallet debit and the tutor
// payout becoming releasable.
const HoldPeriod = 7 * 24 * time.Hour

var ErrNotEligibleForRelease = errors.New("payment cannot be released yet")

// CreatePaymentFromBooking opens a pending payment mirroring the booking's
// amounts. Called inside the accept-booking transaction.
func CreatePaymentFromBooking(tx *gorm.DB, booking *models.Booking) (*models.Payment, error) {
	payment := models.Payment{
		BookingID:        booking.ID,
		StudentID:        booking.StudentID,
		TutorID:          booking.TutorID,
		Amount:           booking.TotalAmount,
		CommissionAmount: booking.CommissionAmount,
		TutorPayout:      booking.TutorPayout(),
		Status:           models.PaymentPending,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// SettleFromWallet debits the student's wallet for the payment amount and
// puts the payment on hold for the cooling period. On insufficient balance
// nothing is written and models.ErrInsufficientBalance is returned; the
// caller treats that as a soft failure.
func SettleFromWallet(tx *gorm.DB, payment *models.Payment, wallet *models.Wallet, description string, now time.Time) error {
	if err := wallet.DeductBalance(tx, payment.Amount, description, &payment.ID); err != nil {
		return err
	}

	holdUntil := now.Add(HoldPeriod)
	payment.Status = models.PaymentOnHold
	payment.IsWalletPayment = true
	payment.PaymentMethod = "wallet"
	payment.HoldUntil = &holdUntil
	payment.PaidAt = &now
	return tx.Save(payment).Error
}

// ReleasePayment completes an on-hold payment once the cooling period is
// over. The eligibility check runs on the row the caller has locked, so a
// concurrent manual release and sweep cannot both fire.
func ReleasePayment(tx *gorm.DB, payment *models.Payment, now time.Time) error {
	if !payment.CanBeReleased(now) {
		return ErrNotEligibleForRelease
	}

	payment.Status = models.PaymentCompleted
	payment.ReleasedAt = &now
	if payment.PaidAt == nil {
		payment.PaidAt = &now
	}
	return tx.Save(payment).Error
}

// ReleaseAndPayout releases an on-hold payment and credits the tutor's
// wallet with the payout net of commission. The tutor wallet is created on
// first payout. Shared by the manual release action and the sweep job.
func ReleaseAndPayout(tx *gorm.DB, payment *models.Payment, now time.Time) error {
	if err := ReleasePayment(tx, payment, now); err != nil {
		return err
	}

	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", payment.TutorID).First(&wallet).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		wallet = models.Wallet{UserID: payment.TutorID}
		if err := tx.Create(&wallet).Error; err != nil {
			return err
		}
	}

	description := fmt.Sprintf("Payout for booking %s", payment.BookingID)
	return wallet.AddBalance(tx, payment.TutorPayout, description)
}

// CompleteGatewayPayment finalizes a pending/processing payment after the
// gateway confirms, stamping the transaction id and issuing the invoice row.
// The returned invoice is not rendered here: the caller kicks off the render
// once its transaction has committed, so the render can see the row.
func CompleteGatewayPayment(tx *gorm.DB, payment *models.Payment, transactionID string, now time.Time) (*models.Invoice, error) {
	if payment.Status != models.PaymentPending && payment.Status != models.PaymentProcessing {
		return nil, fmt.Errorf("payment %s is not awaiting settlement", payment.ID)
	}

	payment.Status = models.PaymentCompleted
	payment.TransactionID = &transactionID
	payment.PaidAt = &now
	if err := tx.Save(payment).Error; err != nil {
		return nil, err
	}

	invoice := models.Invoice{
		PaymentID:     payment.ID,
		InvoiceNumber: GenerateInvoiceNumber(now),
	}
	if err := tx.Create(&invoice).Error; err != nil {
		return nil, err
	}

	return &invoice, nil
}

var ErrRechargeAlreadySettled = errors.New("recharge has already been credited")

// SettleRecharge credits a pending top-up to the owner's wallet and marks the
// recharge row settled. The credited amount is the one captured when the
// gateway order was opened; the settlement request never carries an amount.
func SettleRecharge(tx *gorm.DB, recharge *models.WalletRecharge, wallet *models.Wallet, transactionID string) error {
	if recharge.Status != "pending" {
		return ErrRechargeAlreadySettled
	}

	if err := wallet.AddBalance(tx, recharge.Amount, "Wallet recharge "+transactionID); err != nil {
		return err
	}

	recharge.Status = "completed"
	recharge.TransactionID = &transactionID
	return tx.Save(recharge).Error
}
