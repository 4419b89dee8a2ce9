package coordinator

import (
	"context"
	"time"

	"github.com/dukerupert/famdo/internal/chore"
	"github.com/dukerupert/famdo/internal/model"
)

// RefreshResult summarizes one periodic sweep.
type RefreshResult struct {
	Overdue   int `json:"overdue"`
	Penalized int `json:"penalized"`
	Created   int `json:"created"`
}

// Refresh marks overdue chores, applies their penalties, then creates due
// recurring instances. It saves and notifies only when something changed,
// and is safe to run repeatedly.
func (c *Coordinator) Refresh(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveRefresh(time.Since(start)) }()

	var res RefreshResult
	_, err := c.mutate(ctx, "refresh", func(t *tx) bool {
		res.Overdue, res.Penalized = t.sweepOverdue()
		res.Created = t.sweepRecurring()
		return res.Overdue > 0 || res.Created > 0
	})
	if err != nil {
		return RefreshResult{}, err
	}
	if res.Overdue > 0 || res.Created > 0 {
		c.logger.Info("refresh applied", "overdue", res.Overdue, "penalized", res.Penalized, "created", res.Created)
	}
	return res, nil
}

// sweepOverdue transitions past-due pending and claimed instances to overdue.
// The penalty is charged at most once per chore, floored at zero.
func (t *tx) sweepOverdue() (overdue, penalized int) {
	for _, ch := range t.doc.Chores {
		if !chore.ShouldMarkOverdue(ch, t.now) {
			continue
		}
		ch.Status = model.ChoreStatusOverdue
		overdue++

		if ch.NegativePoints <= 0 || ch.OverdueApplied {
			continue
		}
		ch.OverdueApplied = true
		m := t.doc.Member(chore.PenaltyTarget(ch))
		if m == nil {
			continue
		}
		deducted := m.Points - max(0, m.Points-ch.NegativePoints)
		t.adjustPoints(m, -deducted, "overdue_penalty")
		t.metrics.PointsPenalized(deducted)
		t.logger.Info("applied overdue penalty", "member", m.Name, "points", deducted, "chore", ch.Name)
		penalized++
	}
	return overdue, penalized
}
