package model

import (
	"encoding/json"
	"time"
)

type CalendarEvent struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	AllDay      bool    `json:"all_day"`
	// MemberIDs keeps insertion order for display.
	MemberIDs  []string   `json:"member_ids"`
	Color      *string    `json:"color"`
	Recurrence Recurrence `json:"recurrence"`
	Location   string     `json:"location"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewCalendarEvent(title, startDate string, now time.Time) CalendarEvent {
	return CalendarEvent{
		ID:         NewID(),
		Title:      title,
		StartDate:  startDate,
		AllDay:     true,
		MemberIDs:  []string{},
		Recurrence: RecurrenceNone,
		CreatedAt:  now,
	}
}

func (e *CalendarEvent) UnmarshalJSON(data []byte) error {
	type alias CalendarEvent
	a := struct {
		alias
		CreatedAt timestamp `json:"created_at"`
	}{alias: alias{AllDay: true, Recurrence: RecurrenceNone}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.MemberIDs == nil {
		a.MemberIDs = []string{}
	}
	*e = CalendarEvent(a.alias)
	e.CreatedAt = a.CreatedAt.Time
	return nil
}
