package model

import "encoding/json"

// Nullable distinguishes an absent field from an explicit null in a patch.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) apply(dst **T) {
	if n.Set {
		*dst = n.Value
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// MemberPatch lists the member fields callers may change.
type MemberPatch struct {
	Name     *string          `json:"name"`
	Role     *Role            `json:"role" validate:"omitempty,oneof=parent child"`
	Color    *string          `json:"color"`
	Avatar   *string          `json:"avatar"`
	Points   *int             `json:"points"`
	HAUserID Nullable[string] `json:"ha_user_id"`
}

func (p MemberPatch) Apply(m *Member) {
	set(&m.Name, p.Name)
	set(&m.Role, p.Role)
	set(&m.Color, p.Color)
	set(&m.Avatar, p.Avatar)
	set(&m.Points, p.Points)
	p.HAUserID.apply(&m.HAUserID)
}

// ChorePatch lists the chore fields callers may change. Lifecycle bookkeeping
// (claimed_by, template links, overdue_applied) is not patchable.
type ChorePatch struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Points         *int             `json:"points" validate:"omitempty,min=0"`
	AssignedTo     Nullable[string] `json:"assigned_to"`
	Recurrence     *Recurrence      `json:"recurrence" validate:"omitempty,oneof=none always_on daily weekly monthly"`
	DueDate        Nullable[string] `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	DueTime        Nullable[string] `json:"due_time" validate:"omitempty,datetime=15:04"`
	Icon           *string          `json:"icon"`
	Status         *ChoreStatus     `json:"status" validate:"omitempty,oneof=pending claimed awaiting_approval completed rejected overdue"`
	NegativePoints *int             `json:"negative_points" validate:"omitempty,min=0"`
	MaxInstances   *int             `json:"max_instances" validate:"omitempty,min=1"`
}

func (p ChorePatch) Apply(c *Chore) {
	set(&c.Name, p.Name)
	set(&c.Description, p.Description)
	set(&c.Points, p.Points)
	p.AssignedTo.apply(&c.AssignedTo)
	set(&c.Recurrence, p.Recurrence)
	p.DueDate.apply(&c.DueDate)
	p.DueTime.apply(&c.DueTime)
	set(&c.Icon, p.Icon)
	set(&c.Status, p.Status)
	set(&c.NegativePoints, p.NegativePoints)
	set(&c.MaxInstances, p.MaxInstances)
}

type RewardPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	PointsCost  *int             `json:"points_cost" validate:"omitempty,min=0"`
	Icon        *string          `json:"icon"`
	ImageURL    Nullable[string] `json:"image_url"`
	Quantity    *int             `json:"quantity" validate:"omitempty,min=-1"`
	Available   *bool            `json:"available"`
}

func (p RewardPatch) Apply(r *Reward) {
	set(&r.Name, p.Name)
	set(&r.Description, p.Description)
	set(&r.PointsCost, p.PointsCost)
	set(&r.Icon, p.Icon)
	p.ImageURL.apply(&r.ImageURL)
	set(&r.Quantity, p.Quantity)
	set(&r.Available, p.Available)
}

type ClaimPatch struct {
	Status *ClaimStatus `json:"status" validate:"omitempty,oneof=pending approved fulfilled"`
}

func (p ClaimPatch) Apply(c *RewardClaim) {
	set(&c.Status, p.Status)
}

type TodoPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Completed   *bool            `json:"completed"`
	AssignedTo  Nullable[string] `json:"assigned_to"`
	DueDate     Nullable[string] `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority    *Priority        `json:"priority" validate:"omitempty,oneof=low normal high"`
	Category    *string          `json:"category"`
}

func (p TodoPatch) Apply(t *TodoItem) {
	set(&t.Title, p.Title)
	set(&t.Description, p.Description)
	set(&t.Completed, p.Completed)
	p.AssignedTo.apply(&t.AssignedTo)
	p.DueDate.apply(&t.DueDate)
	set(&t.Priority, p.Priority)
	set(&t.Category, p.Category)
}

type EventPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	StartDate   *string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     Nullable[string] `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime   Nullable[string] `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime     Nullable[string] `json:"end_time" validate:"omitempty,datetime=15:04"`
	AllDay      *bool            `json:"all_day"`
	MemberIDs   *[]string        `json:"member_ids"`
	Color       Nullable[string] `json:"color"`
	Recurrence  *Recurrence      `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly"`
	Location    *string          `json:"location"`
}

func (p EventPatch) Apply(e *CalendarEvent) {
	set(&e.Title, p.Title)
	set(&e.Description, p.Description)
	set(&e.StartDate, p.StartDate)
	p.EndDate.apply(&e.EndDate)
	p.StartTime.apply(&e.StartTime)
	p.EndTime.apply(&e.EndTime)
	set(&e.AllDay, p.AllDay)
	if p.MemberIDs != nil {
		e.MemberIDs = append([]string{}, (*p.MemberIDs)...)
	}
	p.Color.apply(&e.Color)
	set(&e.Recurrence, p.Recurrence)
	set(&e.Location, p.Location)
}
