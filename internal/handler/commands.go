package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/famdo/internal/coordinator"
	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/recurrence"
)

type empty struct{}

type memberRef struct {
	MemberID string `json:"member_id" validate:"required"`
}

type addMemberRequest struct {
	Name string `json:"name" validate:"required"`
	model.MemberPatch
}

type updateMemberRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	model.MemberPatch
}

type addPointsRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Points   int    `json:"points" validate:"ne=0"`
}

type addChoreRequest struct {
	Name           string           `json:"name" validate:"required"`
	Description    string           `json:"description"`
	Points         *int             `json:"points" validate:"omitempty,min=0"`
	AssignedTo     *string          `json:"assigned_to"`
	Recurrence     model.Recurrence `json:"recurrence" validate:"omitempty,oneof=none always_on daily weekly monthly"`
	DueDate        *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	DueTime        *string          `json:"due_time" validate:"omitempty,datetime=15:04"`
	Icon           string           `json:"icon"`
	NegativePoints int              `json:"negative_points" validate:"min=0"`
	MaxInstances   *int             `json:"max_instances" validate:"omitempty,min=1"`
}

type updateChoreRequest struct {
	ChoreID string `json:"chore_id" validate:"required"`
	model.ChorePatch
}

type choreRef struct {
	ChoreID string `json:"chore_id" validate:"required"`
}

type choreMemberRequest struct {
	ChoreID  string `json:"chore_id" validate:"required"`
	MemberID string `json:"member_id" validate:"required"`
}

type choreApproverRequest struct {
	ChoreID    string `json:"chore_id" validate:"required"`
	ApproverID string `json:"approver_id" validate:"required"`
}

type reactivateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
	ApproverID string `json:"approver_id" validate:"required"`
}

type deleteAllChoresRequest struct {
	KeepTemplates bool `json:"keep_templates"`
}

type addRewardRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	PointsCost  *int    `json:"points_cost" validate:"omitempty,min=0"`
	Icon        string  `json:"icon"`
	ImageURL    *string `json:"image_url"`
	Quantity    *int    `json:"quantity" validate:"omitempty,min=-1"`
}

type updateRewardRequest struct {
	RewardID string `json:"reward_id" validate:"required"`
	model.RewardPatch
}

type rewardRef struct {
	RewardID string `json:"reward_id" validate:"required"`
}

type claimRewardRequest struct {
	RewardID string `json:"reward_id" validate:"required"`
	MemberID string `json:"member_id" validate:"required"`
}

type fulfillClaimRequest struct {
	ClaimID     string `json:"claim_id" validate:"required"`
	FulfillerID string `json:"fulfiller_id" validate:"required"`
}

type updateClaimRequest struct {
	ClaimID string `json:"claim_id" validate:"required"`
	model.ClaimPatch
}

type claimRef struct {
	ClaimID string `json:"claim_id" validate:"required"`
}

type addTodoRequest struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	AssignedTo  *string        `json:"assigned_to"`
	DueDate     *string        `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority    model.Priority `json:"priority" validate:"omitempty,oneof=low normal high"`
	Category    string         `json:"category"`
	CreatedBy   *string        `json:"created_by"`
}

type updateTodoRequest struct {
	TodoID string `json:"todo_id" validate:"required"`
	model.TodoPatch
}

type todoRef struct {
	TodoID string `json:"todo_id" validate:"required"`
}

type addEventRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	StartDate   string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     *string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime   *string          `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime     *string          `json:"end_time" validate:"omitempty,datetime=15:04"`
	AllDay      *bool            `json:"all_day"`
	MemberIDs   []string         `json:"member_ids"`
	Color       *string          `json:"color"`
	Recurrence  model.Recurrence `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly"`
	Location    string           `json:"location"`
}

type updateEventRequest struct {
	EventID string `json:"event_id" validate:"required"`
	model.EventPatch
}

type eventRef struct {
	EventID string `json:"event_id" validate:"required"`
}

type eventRangeRequest struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

type clearAllRequest struct {
	KeepMembers bool `json:"keep_members"`
}

func (d *Dispatcher) registerCommands() {
	c := d.coord

	getData := command(d, func(ctx context.Context, _ *empty) (any, error) {
		return c.Data()
	})
	d.handle("get_data", getData)
	d.handle("subscribe", getData)

	// Members
	d.handle("add_member", command(d, func(ctx context.Context, p *addMemberRequest) (any, error) {
		m, err := c.AddMember(ctx, p.Name, p.MemberPatch)
		return entity(m, err, "Could not add member")
	}))
	d.handle("update_member", command(d, func(ctx context.Context, p *updateMemberRequest) (any, error) {
		m, err := c.UpdateMember(ctx, p.MemberID, p.MemberPatch)
		return entity(m, err, "Member not found")
	}))
	d.handle("remove_member", command(d, func(ctx context.Context, p *memberRef) (any, error) {
		return deleted(c.RemoveMember(ctx, p.MemberID))
	}))
	d.handle("add_points", command(d, func(ctx context.Context, p *addPointsRequest) (any, error) {
		m, err := c.AddPoints(ctx, p.MemberID, p.Points)
		return entity(m, err, "Member not found")
	}))

	// Chores
	d.handle("add_chore", command(d, func(ctx context.Context, p *addChoreRequest) (any, error) {
		ch, err := c.AddChore(ctx, coordinator.ChoreInput{
			Name:           p.Name,
			Description:    p.Description,
			Points:         p.Points,
			AssignedTo:     p.AssignedTo,
			Recurrence:     p.Recurrence,
			DueDate:        p.DueDate,
			DueTime:        p.DueTime,
			Icon:           p.Icon,
			NegativePoints: p.NegativePoints,
			MaxInstances:   p.MaxInstances,
		})
		return entity(ch, err, "Could not add chore")
	}))
	d.handle("update_chore", command(d, func(ctx context.Context, p *updateChoreRequest) (any, error) {
		ch, err := c.UpdateChore(ctx, p.ChoreID, p.ChorePatch)
		return entity(ch, err, "Chore not found")
	}))
	d.handle("claim_chore", command(d, func(ctx context.Context, p *choreMemberRequest) (any, error) {
		ch, err := c.ClaimChore(ctx, p.ChoreID, p.MemberID)
		return entity(ch, err, "Could not claim chore")
	}))
	d.handle("complete_chore", command(d, func(ctx context.Context, p *choreMemberRequest) (any, error) {
		ch, err := c.CompleteChore(ctx, p.ChoreID, p.MemberID)
		return entity(ch, err, "Could not complete chore")
	}))
	d.handle("approve_chore", command(d, func(ctx context.Context, p *choreApproverRequest) (any, error) {
		approver, err := d.resolveActor(p.ApproverID)
		if err != nil {
			return nil, err
		}
		ch, err := c.ApproveChore(ctx, p.ChoreID, approver)
		return entity(ch, err, "Could not approve chore")
	}))
	d.handle("reject_chore", command(d, func(ctx context.Context, p *choreApproverRequest) (any, error) {
		approver, err := d.resolveActor(p.ApproverID)
		if err != nil {
			return nil, err
		}
		ch, err := c.RejectChore(ctx, p.ChoreID, approver)
		return entity(ch, err, "Could not reject chore")
	}))
	d.handle("retry_chore", command(d, func(ctx context.Context, p *choreMemberRequest) (any, error) {
		ch, err := c.RetryChore(ctx, p.ChoreID, p.MemberID)
		return entity(ch, err, "Could not retry chore")
	}))
	d.handle("reactivate_template", command(d, func(ctx context.Context, p *reactivateRequest) (any, error) {
		approver, err := d.resolveActor(p.ApproverID)
		if err != nil {
			return nil, err
		}
		ch, err := c.ReactivateTemplate(ctx, p.TemplateID, approver)
		return entity(ch, err, "Could not reactivate template")
	}))
	d.handle("delete_chore", command(d, func(ctx context.Context, p *choreRef) (any, error) {
		return deleted(c.DeleteChore(ctx, p.ChoreID))
	}))
	d.handle("upcoming_chores", command(d, func(ctx context.Context, _ *empty) (any, error) {
		return c.UpcomingChores()
	}))
	d.handle("refresh", command(d, func(ctx context.Context, _ *empty) (any, error) {
		return c.Refresh(ctx)
	}))

	// Rewards and claims
	d.handle("add_reward", command(d, func(ctx context.Context, p *addRewardRequest) (any, error) {
		r, err := c.AddReward(ctx, coordinator.RewardInput{
			Name:        p.Name,
			Description: p.Description,
			PointsCost:  p.PointsCost,
			Icon:        p.Icon,
			ImageURL:    p.ImageURL,
			Quantity:    p.Quantity,
		})
		return entity(r, err, "Could not add reward")
	}))
	d.handle("update_reward", command(d, func(ctx context.Context, p *updateRewardRequest) (any, error) {
		r, err := c.UpdateReward(ctx, p.RewardID, p.RewardPatch)
		return entity(r, err, "Reward not found")
	}))
	d.handle("claim_reward", command(d, func(ctx context.Context, p *claimRewardRequest) (any, error) {
		cl, err := c.ClaimReward(ctx, p.RewardID, p.MemberID)
		return entity(cl, err, "Could not claim reward")
	}))
	d.handle("fulfill_reward_claim", command(d, func(ctx context.Context, p *fulfillClaimRequest) (any, error) {
		fulfiller, err := d.resolveActor(p.FulfillerID)
		if err != nil {
			return nil, err
		}
		cl, err := c.FulfillClaim(ctx, p.ClaimID, fulfiller)
		return entity(cl, err, "Could not fulfill reward claim")
	}))
	d.handle("delete_reward", command(d, func(ctx context.Context, p *rewardRef) (any, error) {
		return deleted(c.DeleteReward(ctx, p.RewardID))
	}))
	d.handle("update_reward_claim", command(d, func(ctx context.Context, p *updateClaimRequest) (any, error) {
		cl, err := c.UpdateClaim(ctx, p.ClaimID, p.ClaimPatch)
		return entity(cl, err, "Reward claim not found")
	}))
	d.handle("delete_reward_claim", command(d, func(ctx context.Context, p *claimRef) (any, error) {
		return deleted(c.DeleteClaim(ctx, p.ClaimID))
	}))

	// Todos
	d.handle("add_todo", command(d, func(ctx context.Context, p *addTodoRequest) (any, error) {
		td, err := c.AddTodo(ctx, coordinator.TodoInput{
			Title:       p.Title,
			Description: p.Description,
			AssignedTo:  p.AssignedTo,
			DueDate:     p.DueDate,
			Priority:    p.Priority,
			Category:    p.Category,
			CreatedBy:   p.CreatedBy,
		})
		return entity(td, err, "Could not add todo")
	}))
	d.handle("update_todo", command(d, func(ctx context.Context, p *updateTodoRequest) (any, error) {
		td, err := c.UpdateTodo(ctx, p.TodoID, p.TodoPatch)
		return entity(td, err, "Todo not found")
	}))
	d.handle("complete_todo", command(d, func(ctx context.Context, p *todoRef) (any, error) {
		td, err := c.CompleteTodo(ctx, p.TodoID)
		return entity(td, err, "Todo not found")
	}))
	d.handle("delete_todo", command(d, func(ctx context.Context, p *todoRef) (any, error) {
		return deleted(c.DeleteTodo(ctx, p.TodoID))
	}))

	// Calendar
	d.handle("add_event", command(d, func(ctx context.Context, p *addEventRequest) (any, error) {
		ev, err := c.AddEvent(ctx, coordinator.EventInput{
			Title:       p.Title,
			Description: p.Description,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
			AllDay:      p.AllDay,
			MemberIDs:   p.MemberIDs,
			Color:       p.Color,
			Recurrence:  p.Recurrence,
			Location:    p.Location,
		})
		return entity(ev, err, "Could not add event")
	}))
	d.handle("update_event", command(d, func(ctx context.Context, p *updateEventRequest) (any, error) {
		ev, err := c.UpdateEvent(ctx, p.EventID, p.EventPatch)
		return entity(ev, err, "Event not found")
	}))
	d.handle("delete_event", command(d, func(ctx context.Context, p *eventRef) (any, error) {
		return deleted(c.DeleteEvent(ctx, p.EventID))
	}))
	d.handle("get_events", command(d, func(ctx context.Context, p *eventRangeRequest) (any, error) {
		start, err := time.ParseInLocation(recurrence.DateLayout, p.Start, time.Local)
		if err != nil {
			return nil, invalid(fmt.Sprintf("start: %v", err))
		}
		end, err := time.ParseInLocation(recurrence.DateLayout, p.End, time.Local)
		if err != nil {
			return nil, invalid(fmt.Sprintf("end: %v", err))
		}
		if !end.After(start) {
			return nil, invalid("end must be after start")
		}
		return c.EventsBetween(start, end)
	}))

	// Settings
	d.handle("update_settings", d.updateSettings)

	// Bulk
	d.handle("delete_all_chores", command(d, func(ctx context.Context, p *deleteAllChoresRequest) (any, error) {
		return counted(c.DeleteAllChores(ctx, p.KeepTemplates))
	}))
	d.handle("delete_all_rewards", command(d, func(ctx context.Context, _ *empty) (any, error) {
		return counted(c.DeleteAllRewards(ctx))
	}))
	d.handle("delete_all_reward_claims", command(d, func(ctx context.Context, _ *empty) (any, error) {
		return counted(c.DeleteAllClaims(ctx))
	}))
	d.handle("delete_all_todos", command(d, func(ctx context.Context, _ *empty) (any, error) {
		return counted(c.DeleteAllTodos(ctx))
	}))
	d.handle("delete_all_events", command(d, func(ctx context.Context, _ *empty) (any, error) {
		return counted(c.DeleteAllEvents(ctx))
	}))
	d.handle("delete_all_members", command(d, func(ctx context.Context, _ *empty) (any, error) {
		return counted(c.DeleteAllMembers(ctx))
	}))
	d.handle("clear_all_data", command(d, func(ctx context.Context, p *clearAllRequest) (any, error) {
		counts, err := c.ClearAll(ctx, p.KeepMembers)
		if err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "counts": counts}, nil
	}))
}
