package coordinator

import (
	"context"
	"slices"
	"time"

	"github.com/dukerupert/famdo/internal/chore"
	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/recurrence"
)

type EventInput struct {
	Title       string
	Description string
	StartDate   string
	EndDate     *string
	StartTime   *string
	EndTime     *string
	AllDay      *bool
	MemberIDs   []string
	Color       *string
	Recurrence  model.Recurrence
	Location    string
}

func (c *Coordinator) AddEvent(ctx context.Context, in EventInput) (*model.CalendarEvent, error) {
	return run(ctx, c, "add_event", func(t *tx) *model.CalendarEvent {
		ev := model.NewCalendarEvent(in.Title, in.StartDate, t.now)
		ev.Description = in.Description
		ev.EndDate = in.EndDate
		ev.StartTime = in.StartTime
		ev.EndTime = in.EndTime
		if in.AllDay != nil {
			ev.AllDay = *in.AllDay
		}
		if in.MemberIDs != nil {
			ev.MemberIDs = slices.Clone(in.MemberIDs)
		}
		ev.Color = in.Color
		if in.Recurrence != "" {
			ev.Recurrence = in.Recurrence
		}
		ev.Location = in.Location
		t.doc.CalendarEvents = append(t.doc.CalendarEvents, &ev)
		return &ev
	})
}

func (c *Coordinator) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.CalendarEvent, error) {
	return run(ctx, c, "update_event", func(t *tx) *model.CalendarEvent {
		ev := t.doc.Event(id)
		if ev == nil {
			return nil
		}
		patch.Apply(ev)
		return ev
	})
}

func (c *Coordinator) DeleteEvent(ctx context.Context, id string) (bool, error) {
	return c.mutate(ctx, "delete_event", func(t *tx) bool {
		return removeByID(&t.doc.CalendarEvents, func(ev *model.CalendarEvent) bool { return ev.ID == id })
	})
}

func (c *Coordinator) DeleteAllEvents(ctx context.Context) (int, error) {
	n := 0
	_, err := c.mutate(ctx, "delete_all_events", func(t *tx) bool {
		n = len(t.doc.CalendarEvents)
		t.doc.CalendarEvents = []*model.CalendarEvent{}
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Occurrence is one concrete appearance of a calendar event.
type Occurrence struct {
	Event *model.CalendarEvent `json:"event"`
	Start time.Time            `json:"start"`
	End   time.Time            `json:"end"`
}

// EventsBetween expands every event into its occurrences overlapping
// [start, end), ordered by start time. Events with unparseable dates are skipped.
func (c *Coordinator) EventsBetween(start, end time.Time) ([]Occurrence, error) {
	doc, err := c.Data()
	if err != nil {
		return nil, err
	}
	loc := start.Location()
	out := []Occurrence{}
	for _, ev := range doc.CalendarEvents {
		evStart, evEnd, ok := eventSpan(ev, loc)
		if !ok {
			c.logger.Warn("skipping event with invalid dates", "event_id", ev.ID)
			continue
		}
		for _, occ := range recurrence.Expand(ev.Recurrence, evStart, evEnd, start, end) {
			out = append(out, Occurrence{Event: ev, Start: occ.Start, End: occ.End})
		}
	}
	slices.SortStableFunc(out, func(a, b Occurrence) int { return a.Start.Compare(b.Start) })
	return out, nil
}

// eventSpan returns the first occurrence's bounds. All-day events cover whole
// days through end_date inclusive.
func eventSpan(ev *model.CalendarEvent, loc *time.Location) (time.Time, time.Time, bool) {
	startDay, err := time.ParseInLocation(recurrence.DateLayout, ev.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endDay := startDay
	if ev.EndDate != nil && *ev.EndDate != "" {
		d, err := time.ParseInLocation(recurrence.DateLayout, *ev.EndDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		if !d.Before(startDay) {
			endDay = d
		}
	}
	if ev.AllDay || ev.StartTime == nil {
		return startDay, endDay.AddDate(0, 0, 1), true
	}
	start := atClock(startDay, *ev.StartTime)
	end := start.Add(time.Hour)
	if ev.EndTime != nil {
		end = atClock(endDay, *ev.EndTime)
		if !end.After(start) {
			end = start.Add(time.Hour)
		}
	}
	return start, end, true
}

func atClock(day time.Time, clock string) time.Time {
	tod, err := time.Parse("15:04", clock)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, day.Location())
}

// UpcomingChores lists actionable chores with a due date that are not yet
// completed, soonest first.
func (c *Coordinator) UpcomingChores() ([]*model.Chore, error) {
	doc, err := c.Data()
	if err != nil {
		return nil, err
	}
	loc := c.now().Location()
	type due struct {
		chore *model.Chore
		at    time.Time
	}
	var list []due
	for _, ch := range doc.Chores {
		if !chore.Actionable(ch) || ch.Status == model.ChoreStatusCompleted {
			continue
		}
		if at, ok := chore.DueAt(ch, loc); ok {
			list = append(list, due{chore: ch, at: at})
		}
	}
	slices.SortStableFunc(list, func(a, b due) int { return a.at.Compare(b.at) })
	out := make([]*model.Chore, len(list))
	for i, d := range list {
		out[i] = d.chore
	}
	return out, nil
}
