package services

import (
	"testing"
	"time"

	"github.com/ranktutor/ranktutor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRecurrence(t *testing.T) {
	start := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)

	t.Run("weekly with 21 day window yields three children", func(t *testing.T) {
		end := start.AddDate(0, 0, 21)
		got := ExpandRecurrence(start, models.RecurWeekly, &end)

		require.Len(t, got, 3)
		assert.Equal(t, start.AddDate(0, 0, 7), got[0])
		assert.Equal(t, start.AddDate(0, 0, 14), got[1])
		assert.Equal(t, start.AddDate(0, 0, 21), got[2])
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		end := start.AddDate(0, 0, 14)
		got := ExpandRecurrence(start, models.RecurWeekly, &end)

		require.Len(t, got, 2)
		assert.Equal(t, start.AddDate(0, 0, 14), got[1])
	})

	t.Run("parent is never included", func(t *testing.T) {
		end := start.AddDate(0, 0, 21)
		for _, occurrence := range ExpandRecurrence(start, models.RecurDaily, &end) {
			assert.NotEqual(t, start, occurrence)
		}
	})

	t.Run("daily cadence", func(t *testing.T) {
		end := start.AddDate(0, 0, 3)
		got := ExpandRecurrence(start, models.RecurDaily, &end)
		require.Len(t, got, 3)
		assert.Equal(t, start.AddDate(0, 0, 1), got[0])
	})

	t.Run("biweekly and monthly cadence", func(t *testing.T) {
		end := start.AddDate(0, 0, 60)
		assert.Len(t, ExpandRecurrence(start, models.RecurBiweekly, &end), 4)
		assert.Len(t, ExpandRecurrence(start, models.RecurMonthly, &end), 2)
	})

	t.Run("no end date defaults to a 90 day window", func(t *testing.T) {
		got := ExpandRecurrence(start, models.RecurWeekly, nil)
		assert.Len(t, got, 12)
	})

	t.Run("preserves the lesson time of day", func(t *testing.T) {
		end := start.AddDate(0, 0, 7)
		got := ExpandRecurrence(start, models.RecurWeekly, &end)
		require.Len(t, got, 1)
		assert.Equal(t, 16, got[0].Hour())
		assert.Equal(t, 0, got[0].Minute())
	})
}
