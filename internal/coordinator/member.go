package coordinator

import (
	"context"

	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/notify"
)

// AddMember creates a member. Fields left unset in opts take the defaults.
func (c *Coordinator) AddMember(ctx context.Context, name string, opts model.MemberPatch) (*model.Member, error) {
	return run(ctx, c, "add_member", func(t *tx) *model.Member {
		m := model.NewMember(name, t.now)
		opts.Apply(&m)
		t.doc.Members = append(t.doc.Members, &m)
		return &m
	})
}

func (c *Coordinator) UpdateMember(ctx context.Context, id string, patch model.MemberPatch) (*model.Member, error) {
	return run(ctx, c, "update_member", func(t *tx) *model.Member {
		m := t.doc.Member(id)
		if m == nil {
			return nil
		}
		patch.Apply(m)
		return m
	})
}

func (c *Coordinator) RemoveMember(ctx context.Context, id string) (bool, error) {
	return c.mutate(ctx, "remove_member", func(t *tx) bool {
		return removeByID(&t.doc.Members, func(m *model.Member) bool { return m.ID == id })
	})
}

// AddPoints adjusts a member's balance by delta and returns the member.
func (c *Coordinator) AddPoints(ctx context.Context, memberID string, delta int) (*model.Member, error) {
	return run(ctx, c, "add_points", func(t *tx) *model.Member {
		m := t.doc.Member(memberID)
		if m == nil {
			return nil
		}
		t.adjustPoints(m, delta, "manual")
		return m
	})
}

// adjustPoints applies delta to m and records a points_updated event.
func (t *tx) adjustPoints(m *model.Member, delta int, reason string) {
	previous := m.Points
	m.Points += delta
	t.emit(notify.EventPointsUpdated, map[string]any{
		"member_id": m.ID,
		"points":    m.Points,
		"previous":  previous,
		"added":     delta,
		"reason":    reason,
	})
}

func (c *Coordinator) DeleteAllMembers(ctx context.Context) (int, error) {
	n := 0
	_, err := c.mutate(ctx, "delete_all_members", func(t *tx) bool {
		n = len(t.doc.Members)
		t.doc.Members = []*model.Member{}
		t.logger.Info("deleted all members", "count", n)
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
