package coordinator

import (
	"context"
	"time"

	"github.com/dukerupert/famdo/internal/chore"
	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/recurrence"
)

// createInstance appends a pending instance of tmpl. assignedTo overrides the
// template's assignee when set.
func (t *tx) createInstance(tmpl *model.Chore, dueDate, assignedTo *string) *model.Chore {
	inst := model.NewChore(tmpl.Name, t.now)
	inst.Description = tmpl.Description
	inst.Points = tmpl.Points
	inst.AssignedTo = tmpl.AssignedTo
	if assignedTo != nil {
		inst.AssignedTo = assignedTo
	}
	inst.Recurrence = tmpl.Recurrence
	inst.DueDate = dueDate
	inst.DueTime = tmpl.DueTime
	inst.Icon = tmpl.Icon
	inst.TemplateID = strPtr(tmpl.ID)
	inst.NegativePoints = tmpl.NegativePoints
	inst.MaxInstances = tmpl.MaxInstances
	t.doc.Chores = append(t.doc.Chores, &inst)
	t.logger.Debug("created chore instance", "template_id", tmpl.ID, "instance_id", inst.ID, "due_date", dueDate)
	return &inst
}

// template returns the template behind an instance, or nil.
func (t *tx) template(inst *model.Chore) *model.Chore {
	if inst.TemplateID == nil {
		return nil
	}
	tmpl := t.doc.Chore(*inst.TemplateID)
	if tmpl == nil || !tmpl.IsTemplate {
		return nil
	}
	return tmpl
}

// replenishAlwaysOn spawns the next instance of an always_on chore once the
// current one has been reviewed. Rejected instances do not hold a slot.
func (t *tx) replenishAlwaysOn(inst *model.Chore) {
	if inst.Recurrence != model.RecurrenceAlwaysOn {
		return
	}
	tmpl := t.template(inst)
	if tmpl == nil {
		return
	}
	if chore.ActiveCount(t.doc.Instances(tmpl.ID), false) >= tmpl.MaxInstances {
		return
	}
	next := t.createInstance(tmpl, nil, nil)
	t.logger.Info("created always-on instance", "template", tmpl.Name, "instance_id", next.ID)
}

// sweepRecurring creates at most one instance per time-based template when
// its period has elapsed and it is under its cap. Only completed instances
// free a slot here.
func (t *tx) sweepRecurring() int {
	created := 0
	for _, tmpl := range t.doc.Templates() {
		if !recurrence.IsTimeBased(tmpl.Recurrence) {
			continue
		}
		instances := t.doc.Instances(tmpl.ID)
		if chore.ActiveCount(instances, true) >= tmpl.MaxInstances {
			continue
		}
		if last, ok := lastCreated(instances); ok && !recurrence.ShouldCreate(tmpl.Recurrence, last, t.now) {
			continue
		}
		t.createInstance(tmpl, recurrence.NextDueDate(tmpl.Recurrence, t.now), nil)
		created++
	}
	return created
}

func lastCreated(instances []*model.Chore) (time.Time, bool) {
	var last time.Time
	for _, inst := range instances {
		if inst.CreatedAt.After(last) {
			last = inst.CreatedAt
		}
	}
	return last, len(instances) > 0
}

// ReactivateTemplate creates one instance of a template right away, outside
// the time-based schedule. A parent must ask, and the cap still applies.
func (c *Coordinator) ReactivateTemplate(ctx context.Context, templateID, approverID string) (*model.Chore, error) {
	return run(ctx, c, "reactivate_template", func(t *tx) *model.Chore {
		tmpl := t.doc.Chore(templateID)
		if tmpl == nil || !tmpl.IsTemplate {
			return nil
		}
		if t.parent(approverID, "reactivate chores") == nil {
			return nil
		}
		if chore.ActiveCount(t.doc.Instances(tmpl.ID), false) >= tmpl.MaxInstances {
			return nil
		}
		return t.createInstance(tmpl, recurrence.NextDueDate(tmpl.Recurrence, t.now), nil)
	})
}
