package services

import (
	"time"

	"github.com/ranktutor/ranktutor/models"
)

// defaultRecurrenceWindow caps an open-ended series at 90 days.
const defaultRecurrenceWindow = 90 * 24 * time.Hour

var patternDayDelta = map[models.RecurrencePattern]int{
	models.RecurDaily:    1,
	models.RecurWeekly:   7,
	models.RecurBiweekly: 14,
	models.RecurMonthly:  30,
}

// ExpandRecurrence returns the lesson datetimes of the child bookings a
// recurring parent generates: the parent's datetime advanced by the
// pattern's day delta until the date passes the end date (inclusive). The
// parent's own datetime is not included.
func ExpandRecurrence(parentStart time.Time, pattern models.RecurrencePattern, endDate *time.Time) []time.Time {
	delta, ok := patternDayDelta[pattern]
	if !ok {
		delta = 7
	}

	end := parentStart.Add(defaultRecurrenceWindow)
	if endDate != nil {
		end = *endDate
	}
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, parentStart.Location())

	occurrences := []time.Time{}
	current := parentStart
	for {
		current = current.AddDate(0, 0, delta)
		if current.After(endDay) {
			break
		}
		occurrences = append(occurrences, current)
	}
	return occurrences
}
