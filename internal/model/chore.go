package model

import (
	"encoding/json"
	"time"
)

type ChoreStatus string

const (
	ChoreStatusPending          ChoreStatus = "pending"
	ChoreStatusClaimed          ChoreStatus = "claimed"
	ChoreStatusAwaitingApproval ChoreStatus = "awaiting_approval"
	ChoreStatusCompleted        ChoreStatus = "completed"
	ChoreStatusRejected         ChoreStatus = "rejected"
	ChoreStatusOverdue          ChoreStatus = "overdue"
)

type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceAlwaysOn Recurrence = "always_on"
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

const (
	DefaultChorePoints  = 10
	DefaultChoreIcon    = "mdi:broom"
	DefaultMaxInstances = 3
)

// Chore is either a recurrence template or an actionable instance. Only
// instances (IsTemplate == false) move through the status lifecycle.
type Chore struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Points      int         `json:"points"`
	AssignedTo  *string     `json:"assigned_to"`
	Status      ChoreStatus `json:"status"`
	Recurrence  Recurrence  `json:"recurrence"`
	DueDate     *string     `json:"due_date"`
	DueTime     *string     `json:"due_time"`
	Icon        string      `json:"icon"`
	ClaimedBy   *string     `json:"claimed_by"`
	CompletedAt *time.Time  `json:"completed_at"`
	ApprovedBy  *string     `json:"approved_by"`
	CreatedAt   time.Time   `json:"created_at"`
	LastReset   *time.Time  `json:"last_reset"`

	IsTemplate     bool    `json:"is_template"`
	TemplateID     *string `json:"template_id"`
	NegativePoints int     `json:"negative_points"`
	MaxInstances   int     `json:"max_instances"`
	OverdueApplied bool    `json:"overdue_applied"`
}

// NewChore returns a pending, non-template chore with stored-document defaults.
func NewChore(name string, now time.Time) Chore {
	return Chore{
		ID:           NewID(),
		Name:         name,
		Points:       DefaultChorePoints,
		Status:       ChoreStatusPending,
		Recurrence:   RecurrenceNone,
		Icon:         DefaultChoreIcon,
		CreatedAt:    now,
		MaxInstances: DefaultMaxInstances,
	}
}

// IsInstanceOf reports whether c was spawned from the template with the given id.
func (c Chore) IsInstanceOf(templateID string) bool {
	return !c.IsTemplate && c.TemplateID != nil && *c.TemplateID == templateID
}

func (c *Chore) UnmarshalJSON(data []byte) error {
	type alias Chore
	a := struct {
		alias
		CompletedAt timestamp `json:"completed_at"`
		CreatedAt   timestamp `json:"created_at"`
		LastReset   timestamp `json:"last_reset"`
	}{alias: alias{
		Points:       DefaultChorePoints,
		Status:       ChoreStatusPending,
		Recurrence:   RecurrenceNone,
		Icon:         DefaultChoreIcon,
		MaxInstances: DefaultMaxInstances,
	}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Chore(a.alias)
	c.CompletedAt = a.CompletedAt.ptr()
	c.CreatedAt = a.CreatedAt.Time
	c.LastReset = a.LastReset.ptr()
	return nil
}
