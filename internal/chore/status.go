package chore

import (
	"time"

	"github.com/dukerupert/famdo/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Actionable reports whether c may move through the status lifecycle.
// Templates never do.
func Actionable(c *model.Chore) bool {
	return c != nil && !c.IsTemplate
}

// CanClaim reports whether a member may claim c.
func CanClaim(c *model.Chore) bool {
	if !Actionable(c) {
		return false
	}
	return c.Status == model.ChoreStatusPending || c.Status == model.ChoreStatusOverdue
}

// CanComplete reports whether memberID may mark c done. Only the claimer can,
// and only while the chore is still in their hands.
func CanComplete(c *model.Chore, memberID string) bool {
	if !Actionable(c) || !claimedBy(c, memberID) {
		return false
	}
	return c.Status == model.ChoreStatusClaimed || c.Status == model.ChoreStatusOverdue
}

// CanReview reports whether c is waiting on a parent's approve or reject.
func CanReview(c *model.Chore) bool {
	return Actionable(c) && c.Status == model.ChoreStatusAwaitingApproval
}

// CanRetry reports whether memberID may pick a rejected chore back up.
func CanRetry(c *model.Chore, memberID string) bool {
	return Actionable(c) && c.Status == model.ChoreStatusRejected && claimedBy(c, memberID)
}

// IsActive reports whether an instance still occupies a slot under its
// template's max_instances cap. The refresh sweep counts rejected instances
// as active; always_on replenishment and manual reactivation do not.
func IsActive(c *model.Chore, countRejected bool) bool {
	switch c.Status {
	case model.ChoreStatusCompleted:
		return false
	case model.ChoreStatusRejected:
		return countRejected
	}
	return true
}

// ActiveCount counts the instances that are active per IsActive.
func ActiveCount(instances []*model.Chore, countRejected bool) int {
	n := 0
	for _, c := range instances {
		if IsActive(c, countRejected) {
			n++
		}
	}
	return n
}

// DueAt returns the moment c falls due in loc. A due date without a time is
// due at the start of that day. ok is false when c has no usable due date.
func DueAt(c *model.Chore, loc *time.Location) (due time.Time, ok bool) {
	if c.DueDate == nil || *c.DueDate == "" {
		return time.Time{}, false
	}
	day, err := parseDate(*c.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	if c.DueTime != nil && *c.DueTime != "" {
		if tod, err := time.Parse(timeLayout, *c.DueTime); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), true
		}
	}
	return day, true
}

// ShouldMarkOverdue reports whether the overdue sweep should transition c at now.
func ShouldMarkOverdue(c *model.Chore, now time.Time) bool {
	if !Actionable(c) {
		return false
	}
	if c.Status != model.ChoreStatusPending && c.Status != model.ChoreStatusClaimed {
		return false
	}
	due, ok := DueAt(c, now.Location())
	return ok && now.After(due)
}

// PenaltyTarget returns the member who pays the overdue penalty: the claimer
// if any, else the assignee. It returns "" when nobody is responsible.
func PenaltyTarget(c *model.Chore) string {
	if c.ClaimedBy != nil && *c.ClaimedBy != "" {
		return *c.ClaimedBy
	}
	if c.AssignedTo != nil {
		return *c.AssignedTo
	}
	return ""
}

func claimedBy(c *model.Chore, memberID string) bool {
	return c.ClaimedBy != nil && *c.ClaimedBy == memberID
}

// parseDate accepts a plain date or a full timestamp, with or without offset.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := model.ParseTimestampIn(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}
