package model

import (
	"encoding/json"
	"maps"
	"slices"
)

const DefaultFamilyName = "My Family"

// Document is the whole household state. It is persisted as one unit.
type Document struct {
	FamilyName     string           `json:"family_name"`
	Members        []*Member        `json:"members"`
	Chores         []*Chore         `json:"chores"`
	Rewards        []*Reward        `json:"rewards"`
	RewardClaims   []*RewardClaim   `json:"reward_claims"`
	Todos          []*TodoItem      `json:"todos"`
	CalendarEvents []*CalendarEvent `json:"events"`
	Settings       map[string]any   `json:"settings"`
}

func NewDocument() *Document {
	d := &Document{FamilyName: DefaultFamilyName}
	d.normalize()
	return d
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	a := alias{FamilyName: DefaultFamilyName}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Document(a)
	d.normalize()
	return nil
}

// normalize replaces nil collections so the serialized form always carries
// arrays and an object, never null.
func (d *Document) normalize() {
	if d.Members == nil {
		d.Members = []*Member{}
	}
	if d.Chores == nil {
		d.Chores = []*Chore{}
	}
	if d.Rewards == nil {
		d.Rewards = []*Reward{}
	}
	if d.RewardClaims == nil {
		d.RewardClaims = []*RewardClaim{}
	}
	if d.Todos == nil {
		d.Todos = []*TodoItem{}
	}
	if d.CalendarEvents == nil {
		d.CalendarEvents = []*CalendarEvent{}
	}
	if d.Settings == nil {
		d.Settings = map[string]any{}
	}
	d.Members = slices.DeleteFunc(d.Members, func(m *Member) bool { return m == nil })
	d.Chores = slices.DeleteFunc(d.Chores, func(c *Chore) bool { return c == nil })
	d.Rewards = slices.DeleteFunc(d.Rewards, func(r *Reward) bool { return r == nil })
	d.RewardClaims = slices.DeleteFunc(d.RewardClaims, func(c *RewardClaim) bool { return c == nil })
	d.Todos = slices.DeleteFunc(d.Todos, func(t *TodoItem) bool { return t == nil })
	d.CalendarEvents = slices.DeleteFunc(d.CalendarEvents, func(e *CalendarEvent) bool { return e == nil })
}

func find[T any](items []*T, match func(*T) bool) *T {
	for _, item := range items {
		if match(item) {
			return item
		}
	}
	return nil
}

// Member returns the member with the given id, or nil.
func (d *Document) Member(id string) *Member {
	return find(d.Members, func(m *Member) bool { return m.ID == id })
}

// MemberByHAUser returns the member linked to the given external auth user, or nil.
func (d *Document) MemberByHAUser(userID string) *Member {
	return find(d.Members, func(m *Member) bool { return m.HAUserID != nil && *m.HAUserID == userID })
}

func (d *Document) Chore(id string) *Chore {
	return find(d.Chores, func(c *Chore) bool { return c.ID == id })
}

func (d *Document) Reward(id string) *Reward {
	return find(d.Rewards, func(r *Reward) bool { return r.ID == id })
}

func (d *Document) Claim(id string) *RewardClaim {
	return find(d.RewardClaims, func(c *RewardClaim) bool { return c.ID == id })
}

func (d *Document) Todo(id string) *TodoItem {
	return find(d.Todos, func(t *TodoItem) bool { return t.ID == id })
}

func (d *Document) Event(id string) *CalendarEvent {
	return find(d.CalendarEvents, func(e *CalendarEvent) bool { return e.ID == id })
}

// Instances returns every non-template chore spawned from templateID.
func (d *Document) Instances(templateID string) []*Chore {
	var out []*Chore
	for _, c := range d.Chores {
		if c.IsInstanceOf(templateID) {
			out = append(out, c)
		}
	}
	return out
}

// Templates returns every recurrence template in the document.
func (d *Document) Templates() []*Chore {
	var out []*Chore
	for _, c := range d.Chores {
		if c.IsTemplate {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy safe to hand to callers outside the coordinator lock.
func (d *Document) Clone() *Document {
	out := &Document{
		FamilyName:     d.FamilyName,
		Members:        cloneAll(d.Members),
		Chores:         cloneAll(d.Chores),
		Rewards:        cloneAll(d.Rewards),
		RewardClaims:   cloneAll(d.RewardClaims),
		Todos:          cloneAll(d.Todos),
		CalendarEvents: cloneAll(d.CalendarEvents),
		Settings:       maps.Clone(d.Settings),
	}
	for _, e := range out.CalendarEvents {
		e.MemberIDs = slices.Clone(e.MemberIDs)
	}
	out.normalize()
	return out
}

// cloneAll copies each element. Pointer fields inside are shared; callers
// replace them rather than writing through them.
func cloneAll[T any](items []*T) []*T {
	out := make([]*T, len(items))
	for i, item := range items {
		v := *item
		out[i] = &v
	}
	return out
}
