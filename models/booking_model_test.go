package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingAmounts(t *testing.T) {
	t.Run("standard lesson", func(t *testing.T) {
		total, commission := BookingAmounts(1000, 2, 0.15)
		assert.Equal(t, 2000.0, total)
		assert.Equal(t, 300.0, commission)
	})

	t.Run("fractional duration", func(t *testing.T) {
		total, commission := BookingAmounts(800, 1.5, 0.15)
		assert.Equal(t, 1200.0, total)
		assert.InDelta(t, 180.0, commission, 0.0001)
	})

	t.Run("rate is taken from the argument", func(t *testing.T) {
		_, atTen := BookingAmounts(1000, 1, 0.10)
		_, atTwenty := BookingAmounts(1000, 1, 0.20)
		assert.Equal(t, 100.0, atTen)
		assert.Equal(t, 200.0, atTwenty)
	})
}

func TestFreeTrialChargesNothing(t *testing.T) {
	booking := Booking{
		PricePerHour:   800,
		DurationHours:  1,
		CommissionRate: 0.15,
		IsTrial:        true,
		TrialIsFree:    true,
	}

	assert.NoError(t, booking.BeforeSave(nil))
	assert.Equal(t, 0.0, booking.TotalAmount)
	assert.Equal(t, 0.0, booking.CommissionAmount)
	assert.Equal(t, 0.0, booking.TutorPayout())
}

func TestPaidTrialKeepsAmounts(t *testing.T) {
	booking := Booking{
		PricePerHour:   800,
		DurationHours:  1,
		CommissionRate: 0.15,
		IsTrial:        true,
	}

	assert.NoError(t, booking.BeforeSave(nil))
	assert.Equal(t, 800.0, booking.TotalAmount)
	assert.Equal(t, 120.0, booking.CommissionAmount)
}

func TestBookingTutorPayout(t *testing.T) {
	booking := Booking{PricePerHour: 1000, DurationHours: 2, CommissionRate: 0.15}
	booking.TotalAmount, booking.CommissionAmount = BookingAmounts(booking.PricePerHour, booking.DurationHours, booking.CommissionRate)

	assert.Equal(t, 1700.0, booking.TutorPayout())
}
