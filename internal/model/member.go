package model

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

const (
	DefaultMemberColor  = "#4ECDC4"
	DefaultMemberAvatar = "mdi:account"
)

type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Color     string    `json:"color"`
	Avatar    string    `json:"avatar"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	// HAUserID links the member to an external auth user.
	HAUserID *string `json:"ha_user_id"`
}

// NewMember returns a member carrying the stored-document defaults.
func NewMember(name string, now time.Time) Member {
	return Member{
		ID:        NewID(),
		Name:      name,
		Role:      RoleChild,
		Color:     DefaultMemberColor,
		Avatar:    DefaultMemberAvatar,
		CreatedAt: now,
	}
}

func (m Member) IsParent() bool {
	return m.Role == RoleParent
}

func (m *Member) UnmarshalJSON(data []byte) error {
	type alias Member
	a := struct {
		alias
		CreatedAt timestamp `json:"created_at"`
	}{alias: alias{Role: RoleChild, Color: DefaultMemberColor, Avatar: DefaultMemberAvatar}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Member(a.alias)
	m.CreatedAt = a.CreatedAt.Time
	return nil
}
