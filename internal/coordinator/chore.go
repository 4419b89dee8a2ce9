package coordinator

import (
	"context"

	"github.com/dukerupert/famdo/internal/chore"
	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/notify"
	"github.com/dukerupert/famdo/internal/recurrence"
)

// ChoreInput describes a new chore. Nil pointers take the defaults.
type ChoreInput struct {
	Name           string
	Description    string
	Points         *int
	AssignedTo     *string
	Recurrence     model.Recurrence
	DueDate        *string
	DueTime        *string
	Icon           string
	NegativePoints int
	MaxInstances   *int
}

// AddChore creates a chore. A recurring chore is stored as a template plus
// a first instance, and the instance is returned. A one-time chore is capped
// at a single instance.
func (c *Coordinator) AddChore(ctx context.Context, in ChoreInput) (*model.Chore, error) {
	return run(ctx, c, "add_chore", func(t *tx) *model.Chore {
		rec := in.Recurrence
		if rec == "" {
			rec = model.RecurrenceNone
		}
		if rec != model.RecurrenceNone && !recurrence.IsRecurring(rec) {
			t.logger.Warn("unknown recurrence", "recurrence", rec)
			return nil
		}

		ch := model.NewChore(in.Name, t.now)
		ch.Description = in.Description
		if in.Points != nil {
			ch.Points = *in.Points
		}
		ch.AssignedTo = in.AssignedTo
		ch.Recurrence = rec
		ch.DueDate = in.DueDate
		ch.DueTime = in.DueTime
		if in.Icon != "" {
			ch.Icon = in.Icon
		}
		ch.NegativePoints = in.NegativePoints
		if in.MaxInstances != nil && *in.MaxInstances > 0 {
			ch.MaxInstances = *in.MaxInstances
		}

		if rec == model.RecurrenceNone {
			ch.MaxInstances = 1
			t.doc.Chores = append(t.doc.Chores, &ch)
			return &ch
		}

		ch.IsTemplate = true
		ch.DueDate = nil
		t.doc.Chores = append(t.doc.Chores, &ch)
		return t.createInstance(&ch, in.DueDate, nil)
	})
}

// UpdateChore patches the editable fields of a chore or template. Only a
// template may change recurrence, and only to another recurring value; the
// change is copied to its instances.
func (c *Coordinator) UpdateChore(ctx context.Context, id string, patch model.ChorePatch) (*model.Chore, error) {
	return run(ctx, c, "update_chore", func(t *tx) *model.Chore {
		ch := t.doc.Chore(id)
		if ch == nil {
			return nil
		}
		if r := patch.Recurrence; r != nil && *r != ch.Recurrence {
			if !ch.IsTemplate || !recurrence.IsRecurring(*r) {
				t.logger.Warn("recurrence change refused", "chore_id", id, "from", ch.Recurrence, "to", *r)
				return nil
			}
		}
		patch.Apply(ch)
		if ch.IsTemplate {
			ch.DueDate = nil
			for _, inst := range t.doc.Instances(ch.ID) {
				inst.Recurrence = ch.Recurrence
			}
		}
		return ch
	})
}

// ClaimChore reserves an open or overdue chore for memberID.
func (c *Coordinator) ClaimChore(ctx context.Context, choreID, memberID string) (*model.Chore, error) {
	return run(ctx, c, "claim_chore", func(t *tx) *model.Chore {
		ch := t.doc.Chore(choreID)
		if !chore.CanClaim(ch) || t.doc.Member(memberID) == nil {
			return nil
		}
		ch.Status = model.ChoreStatusClaimed
		ch.ClaimedBy = strPtr(memberID)
		return ch
	})
}

// CompleteChore hands a claimed chore to the parents for approval.
func (c *Coordinator) CompleteChore(ctx context.Context, choreID, memberID string) (*model.Chore, error) {
	return run(ctx, c, "complete_chore", func(t *tx) *model.Chore {
		ch := t.doc.Chore(choreID)
		if !chore.CanComplete(ch, memberID) {
			return nil
		}
		ch.Status = model.ChoreStatusAwaitingApproval
		ch.CompletedAt = timePtr(t.now)
		return ch
	})
}

// ApproveChore accepts a finished chore and pays its points to the claimer.
func (c *Coordinator) ApproveChore(ctx context.Context, choreID, approverID string) (*model.Chore, error) {
	return run(ctx, c, "approve_chore", func(t *tx) *model.Chore {
		ch := t.doc.Chore(choreID)
		if ch == nil || t.parent(approverID, "approve chores") == nil || !chore.CanReview(ch) {
			return nil
		}
		ch.Status = model.ChoreStatusCompleted
		ch.ApprovedBy = strPtr(approverID)

		var memberID any
		if ch.ClaimedBy != nil {
			memberID = *ch.ClaimedBy
			if m := t.doc.Member(*ch.ClaimedBy); m != nil {
				t.adjustPoints(m, ch.Points, "chore_approved")
				t.metrics.PointsAwarded(ch.Points)
			}
		}
		t.emit(notify.EventChoreCompleted, map[string]any{
			"chore_id":  ch.ID,
			"member_id": memberID,
			"points":    ch.Points,
		})
		t.replenishAlwaysOn(ch)
		return ch
	})
}

// RejectChore sends a finished chore back. No points move.
func (c *Coordinator) RejectChore(ctx context.Context, choreID, approverID string) (*model.Chore, error) {
	return run(ctx, c, "reject_chore", func(t *tx) *model.Chore {
		ch := t.doc.Chore(choreID)
		if ch == nil || t.parent(approverID, "reject chores") == nil || !chore.CanReview(ch) {
			return nil
		}
		ch.Status = model.ChoreStatusRejected
		t.replenishAlwaysOn(ch)
		return ch
	})
}

// RetryChore lets the original claimer pick a rejected chore back up.
func (c *Coordinator) RetryChore(ctx context.Context, choreID, memberID string) (*model.Chore, error) {
	return run(ctx, c, "retry_chore", func(t *tx) *model.Chore {
		ch := t.doc.Chore(choreID)
		if !chore.CanRetry(ch, memberID) {
			return nil
		}
		ch.Status = model.ChoreStatusClaimed
		ch.CompletedAt = nil
		return ch
	})
}

func (c *Coordinator) DeleteChore(ctx context.Context, id string) (bool, error) {
	return c.mutate(ctx, "delete_chore", func(t *tx) bool {
		return removeByID(&t.doc.Chores, func(ch *model.Chore) bool { return ch.ID == id })
	})
}

// DeleteAllChores removes every chore, or only instances when keepTemplates is set.
func (c *Coordinator) DeleteAllChores(ctx context.Context, keepTemplates bool) (int, error) {
	n := 0
	_, err := c.mutate(ctx, "delete_all_chores", func(t *tx) bool {
		kept := []*model.Chore{}
		for _, ch := range t.doc.Chores {
			if keepTemplates && ch.IsTemplate {
				kept = append(kept, ch)
			}
		}
		n = len(t.doc.Chores) - len(kept)
		t.doc.Chores = kept
		t.logger.Info("deleted chores", "count", n, "keep_templates", keepTemplates)
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
