package recurrence

import (
	"time"

	"github.com/dukerupert/famdo/internal/model"
)

// Occurrence is a single generated occurrence of a recurring event.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

const maxIterations = 10000

// Expand generates every occurrence of an event within [rangeStart, rangeEnd).
// eventStart and eventEnd span the first occurrence and fix the duration.
// Monthly events repeat on the same day of the month, skipping months that
// are too short.
func Expand(r model.Recurrence, eventStart, eventEnd, rangeStart, rangeEnd time.Time) []Occurrence {
	duration := eventEnd.Sub(eventStart)
	var results []Occurrence

	it := iterator{rec: r, base: eventStart, current: eventStart}
	for i := 0; i < maxIterations; i++ {
		occStart, ok := it.next()
		if !ok || !occStart.Before(rangeEnd) {
			break
		}
		occEnd := occStart.Add(duration)
		if occEnd.After(rangeStart) || (duration == 0 && !occStart.Before(rangeStart)) {
			results = append(results, Occurrence{Start: occStart, End: occEnd})
		}
	}

	return results
}

type iterator struct {
	rec     model.Recurrence
	base    time.Time
	current time.Time
	months  int
	started bool
}

func (it *iterator) next() (time.Time, bool) {
	if !it.started {
		it.started = true
		return it.current, true
	}
	switch it.rec {
	case model.RecurrenceDaily:
		it.current = it.current.AddDate(0, 0, 1)
	case model.RecurrenceWeekly:
		it.current = it.current.AddDate(0, 0, weekDays)
	case model.RecurrenceMonthly:
		it.current = it.advanceMonthly()
	default:
		return time.Time{}, false
	}
	return it.current, true
}

func (it *iterator) advanceMonthly() time.Time {
	day := it.base.Day()
	for {
		it.months++
		first := time.Date(it.base.Year(), it.base.Month()+time.Month(it.months), 1,
			it.base.Hour(), it.base.Minute(), it.base.Second(), 0, it.base.Location())
		if day <= daysInMonth(first.Year(), first.Month()) {
			return first.AddDate(0, 0, day-1)
		}
	}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
