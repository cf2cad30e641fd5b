package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentCanBeReleased(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	t.Run("held payment past hold time", func(t *testing.T) {
		p := Payment{Status: PaymentOnHold, HoldUntil: &past}
		assert.True(t, p.CanBeReleased(now))
	})

	t.Run("exactly at hold time is eligible", func(t *testing.T) {
		p := Payment{Status: PaymentOnHold, HoldUntil: &now}
		assert.True(t, p.CanBeReleased(now))
	})

	t.Run("still inside the hold window", func(t *testing.T) {
		p := Payment{Status: PaymentOnHold, HoldUntil: &future}
		assert.False(t, p.CanBeReleased(now))
	})

	t.Run("wrong status", func(t *testing.T) {
		for _, status := range []PaymentStatus{PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentRefunded} {
			p := Payment{Status: status, HoldUntil: &past}
			assert.False(t, p.CanBeReleased(now), string(status))
		}
	})

	t.Run("no hold timestamp", func(t *testing.T) {
		p := Payment{Status: PaymentOnHold}
		assert.False(t, p.CanBeReleased(now))
	})
}
