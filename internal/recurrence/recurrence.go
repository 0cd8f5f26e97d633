// Package recurrence computes the next occurrence date for recurring tasks.
package recurrence

import (
	"fmt"
	"time"

	"github.com/aduval/foyer/internal/model"
)

const dateLayout = "2006-01-02"

// Next returns the date interval units after from, both formatted
// YYYY-MM-DD. Month and year steps clamp to the last day of the target
// month, so Jan 31 + 1 MONTH is Feb 28 (or 29), not Mar 3.
func Next(from, unit string, interval int) (string, error) {
	if interval < 1 {
		return "", fmt.Errorf("interval must be positive, got %d", interval)
	}
	t, err := time.Parse(dateLayout, from)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", from, err)
	}

	var next time.Time
	switch unit {
	case model.RecurDay:
		next = t.AddDate(0, 0, interval)
	case model.RecurWeek:
		next = t.AddDate(0, 0, 7*interval)
	case model.RecurMonth:
		next = addMonthsClamped(t, interval)
	case model.RecurYear:
		next = addMonthsClamped(t, 12*interval)
	default:
		return "", fmt.Errorf("unknown recurrence unit %q", unit)
	}
	return next.Format(dateLayout), nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := daysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
