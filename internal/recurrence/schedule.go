package recurrence

import (
	"time"

	"github.com/dukerupert/famdo/internal/model"
)

// DateLayout is the stored form of due and start dates.
const DateLayout = "2006-01-02"

const (
	weekDays  = 7
	monthDays = 30
)

// IsTimeBased reports whether templates of this recurrence are replenished by
// the periodic sweep rather than on approval.
func IsTimeBased(r model.Recurrence) bool {
	switch r {
	case model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceMonthly:
		return true
	}
	return false
}

// IsRecurring reports whether a chore with this recurrence is backed by a template.
func IsRecurring(r model.Recurrence) bool {
	return r == model.RecurrenceAlwaysOn || IsTimeBased(r)
}

// ShouldCreate reports whether enough time has passed since lastCreated for
// a new instance. Daily compares calendar dates; weekly and monthly use a
// fixed number of elapsed days, so monthly drifts against calendar months.
func ShouldCreate(r model.Recurrence, lastCreated, now time.Time) bool {
	last := startOfDay(lastCreated.In(now.Location()))
	today := startOfDay(now)
	switch r {
	case model.RecurrenceDaily:
		return today.After(last)
	case model.RecurrenceWeekly:
		return daysBetween(last, today) >= weekDays
	case model.RecurrenceMonthly:
		return daysBetween(last, today) >= monthDays
	}
	return false
}

// NextDueDate returns the due date for an instance created today, or nil for
// recurrences without one.
func NextDueDate(r model.Recurrence, now time.Time) *string {
	today := startOfDay(now)
	var due time.Time
	switch r {
	case model.RecurrenceDaily:
		due = today
	case model.RecurrenceWeekly:
		due = today.AddDate(0, 0, weekDays)
	case model.RecurrenceMonthly:
		due = today.AddDate(0, 0, monthDays)
	default:
		return nil
	}
	s := due.Format(DateLayout)
	return &s
}

func daysBetween(from, to time.Time) int {
	// Round to absorb DST shifts between two local midnights.
	return int((to.Sub(from) + 12*time.Hour) / (24 * time.Hour))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
