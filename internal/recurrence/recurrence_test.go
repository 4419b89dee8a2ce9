package recurrence

import (
	"testing"
	"time"

	"github.com/dukerupert/famdo/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsTimeBased(t *testing.T) {
	tests := []struct {
		rec  model.Recurrence
		want bool
	}{
		{model.RecurrenceNone, false},
		{model.RecurrenceAlwaysOn, false},
		{model.RecurrenceDaily, true},
		{model.RecurrenceWeekly, true},
		{model.RecurrenceMonthly, true},
	}
	for _, tt := range tests {
		if got := IsTimeBased(tt.rec); got != tt.want {
			t.Errorf("IsTimeBased(%q) = %v, want %v", tt.rec, got, tt.want)
		}
	}
	if !IsRecurring(model.RecurrenceAlwaysOn) || IsRecurring(model.RecurrenceNone) {
		t.Error("IsRecurring misclassifies always_on or none")
	}
}

func TestShouldCreate(t *testing.T) {
	last := time.Date(2026, 2, 1, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		rec  model.Recurrence
		now  time.Time
		want bool
	}{
		{"daily same day", model.RecurrenceDaily, time.Date(2026, 2, 1, 23, 59, 0, 0, time.UTC), false},
		{"daily next day", model.RecurrenceDaily, time.Date(2026, 2, 2, 0, 1, 0, 0, time.UTC), true},
		{"weekly six days", model.RecurrenceWeekly, date(2026, 2, 7), false},
		{"weekly seven days", model.RecurrenceWeekly, date(2026, 2, 8), true},
		{"monthly 29 days", model.RecurrenceMonthly, date(2026, 3, 2), false},
		{"monthly 30 days", model.RecurrenceMonthly, date(2026, 3, 3), true},
		{"always_on never", model.RecurrenceAlwaysOn, date(2027, 1, 1), false},
		{"none never", model.RecurrenceNone, date(2027, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldCreate(tt.rec, last, tt.now); got != tt.want {
				t.Errorf("ShouldCreate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	now := time.Date(2026, 1, 31, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		rec  model.Recurrence
		want string
	}{
		{model.RecurrenceDaily, "2026-01-31"},
		{model.RecurrenceWeekly, "2026-02-07"},
		{model.RecurrenceMonthly, "2026-03-02"},
	}
	for _, tt := range tests {
		got := NextDueDate(tt.rec, now)
		if got == nil || *got != tt.want {
			t.Errorf("NextDueDate(%q) = %v, want %s", tt.rec, got, tt.want)
		}
	}
	if got := NextDueDate(model.RecurrenceAlwaysOn, now); got != nil {
		t.Errorf("NextDueDate(always_on) = %s, want nil", *got)
	}
}

func TestExpandWeekly(t *testing.T) {
	start := time.Date(2026, 2, 2, 16, 0, 0, 0, time.UTC)
	occ := Expand(model.RecurrenceWeekly, start, start.Add(time.Hour), date(2026, 2, 1), date(2026, 3, 1))
	if len(occ) != 4 {
		t.Fatalf("got %d occurrences, want 4", len(occ))
	}
	for i, o := range occ {
		want := start.AddDate(0, 0, 7*i)
		if !o.Start.Equal(want) {
			t.Errorf("occ[%d].Start = %v, want %v", i, o.Start, want)
		}
		if o.End.Sub(o.Start) != time.Hour {
			t.Errorf("occ[%d] duration = %v, want 1h", i, o.End.Sub(o.Start))
		}
	}
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	start := date(2026, 1, 31)
	occ := Expand(model.RecurrenceMonthly, start, start.AddDate(0, 0, 1), date(2026, 1, 1), date(2026, 6, 1))
	want := []time.Time{date(2026, 1, 31), date(2026, 3, 31), date(2026, 5, 31)}
	if len(occ) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(occ), len(want))
	}
	for i := range want {
		if !occ[i].Start.Equal(want[i]) {
			t.Errorf("occ[%d] = %v, want %v", i, occ[i].Start, want[i])
		}
	}
}

func TestExpandNoneYieldsSingleOccurrence(t *testing.T) {
	start := date(2026, 4, 10)
	occ := Expand(model.RecurrenceNone, start, start.AddDate(0, 0, 1), date(2026, 4, 1), date(2026, 5, 1))
	if len(occ) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occ))
	}
	if out := Expand(model.RecurrenceNone, start, start.AddDate(0, 0, 1), date(2026, 5, 1), date(2026, 6, 1)); len(out) != 0 {
		t.Errorf("event outside range should not appear, got %d", len(out))
	}
}

func TestExpandRangeStartsMidSeries(t *testing.T) {
	start := date(2026, 1, 1)
	occ := Expand(model.RecurrenceDaily, start, start.AddDate(0, 0, 1), date(2026, 1, 10), date(2026, 1, 13))
	if len(occ) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occ))
	}
	if !occ[0].Start.Equal(date(2026, 1, 10)) {
		t.Errorf("first = %v, want 2026-01-10", occ[0].Start)
	}
}
