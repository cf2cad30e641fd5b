package services

import (
	"testing"
	"time"

	"github.com/ranktutor/ranktutor/models"
	"github.com/stretchr/testify/assert"
)

func TestReleasePaymentEligibility(t *testing.T) {
	now := time.Now()

	t.Run("not eligible before hold expires", func(t *testing.T) {
		holdUntil := now.Add(time.Hour)
		payment := &models.Payment{Status: models.PaymentOnHold, HoldUntil: &holdUntil}

		err := ReleasePayment(nil, payment, now)
		assert.ErrorIs(t, err, ErrNotEligibleForRelease)
		assert.Equal(t, models.PaymentOnHold, payment.Status)
	})

	t.Run("completed payment is never re-released", func(t *testing.T) {
		holdUntil := now.Add(-time.Hour)
		payment := &models.Payment{Status: models.PaymentCompleted, HoldUntil: &holdUntil}

		err := ReleasePayment(nil, payment, now)
		assert.ErrorIs(t, err, ErrNotEligibleForRelease)
	})

	t.Run("missing hold timestamp is not eligible", func(t *testing.T) {
		payment := &models.Payment{Status: models.PaymentOnHold}
		err := ReleasePayment(nil, payment, now)
		assert.ErrorIs(t, err, ErrNotEligibleForRelease)
	})
}

func TestSettleRechargeIsIdempotent(t *testing.T) {
	// A settled recharge must not credit again, whatever a replayed callback
	// claims. A nil transaction would panic on any write.
	recharge := &models.WalletRecharge{Amount: 5000, Status: "completed"}
	wallet := &models.Wallet{Balance: 1200}

	err := SettleRecharge(nil, recharge, wallet, "pay_replayed")

	assert.ErrorIs(t, err, ErrRechargeAlreadySettled)
	assert.Equal(t, 1200.0, wallet.Balance)
	assert.Nil(t, recharge.TransactionID)
}

func TestCompleteGatewayPaymentRejectsSettledPayment(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentCompleted}

	invoice, err := CompleteGatewayPayment(nil, payment, "pay_abc", time.Now())

	assert.Error(t, err)
	assert.Nil(t, invoice)
}

func TestHoldPeriod(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, HoldPeriod)
}

func TestGenerateInvoiceNumber(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	first := GenerateInvoiceNumber(now)
	second := GenerateInvoiceNumber(now)

	assert.Regexp(t, `^INV-20260901-[0-9A-F]{8}$`, first)
	assert.NotEqual(t, first, second)
}
