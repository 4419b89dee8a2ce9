package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stored documents may carry timestamps without a zone offset, written as
// naive ISO 8601 local times. Those are read in time.Local.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 or a naive ISO 8601 local time.
func ParseTimestamp(s string) (time.Time, error) {
	return ParseTimestampIn(s, time.Local)
}

// ParseTimestampIn is ParseTimestamp with naive times read in loc.
func ParseTimestampIn(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}

// timestamp decodes through ParseTimestamp. Null and "" leave it zero.
type timestamp struct {
	time.Time
	set bool
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time, t.set = parsed, true
	return nil
}

func (t timestamp) ptr() *time.Time {
	if !t.set {
		return nil
	}
	v := t.Time
	return &v
}
