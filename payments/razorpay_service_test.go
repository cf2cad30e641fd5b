package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func checkoutSignature(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// The checkout signature covers only the order and payment ids. Nothing in
// it binds the paid amount, which is why settlement code must read the
// amount from the stored order, never from the callback body.
func TestVerifyPaymentSignature(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "test_secret")

	signature := checkoutSignature("test_secret", "order_abc|pay_xyz")

	t.Run("valid triple passes", func(t *testing.T) {
		assert.True(t, VerifyPaymentSignature("order_abc", "pay_xyz", signature))
	})

	t.Run("tampered order id fails", func(t *testing.T) {
		assert.False(t, VerifyPaymentSignature("order_def", "pay_xyz", signature))
	})

	t.Run("tampered payment id fails", func(t *testing.T) {
		assert.False(t, VerifyPaymentSignature("order_abc", "pay_other", signature))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		forged := checkoutSignature("other_secret", "order_abc|pay_xyz")
		assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", forged))
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "hook_secret")

	body := []byte(`{"event":"payment.captured"}`)
	signature := checkoutSignature("hook_secret", string(body))

	assert.True(t, VerifyWebhookSignature(body, signature))
	assert.False(t, VerifyWebhookSignature([]byte(`{"event":"payment.failed"}`), signature))
}
