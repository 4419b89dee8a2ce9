package coordinator

import (
	"context"

	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/notify"
)

// RewardInput describes a new reward. Nil pointers take the defaults.
type RewardInput struct {
	Name        string
	Description string
	PointsCost  *int
	Icon        string
	ImageURL    *string
	Quantity    *int
}

func (c *Coordinator) AddReward(ctx context.Context, in RewardInput) (*model.Reward, error) {
	return run(ctx, c, "add_reward", func(t *tx) *model.Reward {
		r := model.NewReward(in.Name, t.now)
		r.Description = in.Description
		if in.PointsCost != nil {
			r.PointsCost = *in.PointsCost
		}
		if in.Icon != "" {
			r.Icon = in.Icon
		}
		r.ImageURL = in.ImageURL
		if in.Quantity != nil {
			r.Quantity = *in.Quantity
		}
		t.doc.Rewards = append(t.doc.Rewards, &r)
		return &r
	})
}

func (c *Coordinator) UpdateReward(ctx context.Context, id string, patch model.RewardPatch) (*model.Reward, error) {
	return run(ctx, c, "update_reward", func(t *tx) *model.Reward {
		r := t.doc.Reward(id)
		if r == nil {
			return nil
		}
		patch.Apply(r)
		return r
	})
}

func (c *Coordinator) DeleteReward(ctx context.Context, id string) (bool, error) {
	return c.mutate(ctx, "delete_reward", func(t *tx) bool {
		return removeByID(&t.doc.Rewards, func(r *model.Reward) bool { return r.ID == id })
	})
}

func (c *Coordinator) DeleteAllRewards(ctx context.Context) (int, error) {
	n := 0
	_, err := c.mutate(ctx, "delete_all_rewards", func(t *tx) bool {
		n = len(t.doc.Rewards)
		t.doc.Rewards = []*model.Reward{}
		t.logger.Info("deleted all rewards", "count", n)
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ClaimReward spends a member's points on a reward and records a pending
// claim. The member must afford it and the reward must be in stock.
func (c *Coordinator) ClaimReward(ctx context.Context, rewardID, memberID string) (*model.RewardClaim, error) {
	return run(ctx, c, "claim_reward", func(t *tx) *model.RewardClaim {
		r := t.doc.Reward(rewardID)
		m := t.doc.Member(memberID)
		if r == nil || m == nil {
			return nil
		}
		if !r.Available || r.Quantity == 0 || m.Points < r.PointsCost {
			return nil
		}

		m.Points -= r.PointsCost
		if r.Quantity > 0 {
			r.Quantity--
			if r.Quantity == 0 {
				r.Available = false
			}
		}

		claim := model.RewardClaim{
			ID:          model.NewID(),
			RewardID:    r.ID,
			MemberID:    m.ID,
			PointsSpent: r.PointsCost,
			Status:      model.ClaimStatusPending,
			ClaimedAt:   t.now,
		}
		t.doc.RewardClaims = append(t.doc.RewardClaims, &claim)
		t.emit(notify.EventRewardClaimed, map[string]any{
			"claim_id":     claim.ID,
			"reward_id":    r.ID,
			"member_id":    m.ID,
			"points_spent": claim.PointsSpent,
		})
		return &claim
	})
}

// FulfillClaim marks a pending claim as handed over. Points were already
// spent when the claim was made.
func (c *Coordinator) FulfillClaim(ctx context.Context, claimID, fulfillerID string) (*model.RewardClaim, error) {
	return run(ctx, c, "fulfill_claim", func(t *tx) *model.RewardClaim {
		claim := t.doc.Claim(claimID)
		if claim == nil || t.parent(fulfillerID, "fulfill reward claims") == nil {
			return nil
		}
		if claim.Status != model.ClaimStatusPending {
			return nil
		}
		claim.Status = model.ClaimStatusFulfilled
		claim.FulfilledAt = timePtr(t.now)
		t.emit(notify.EventRewardFulfilled, map[string]any{
			"claim_id":     claim.ID,
			"reward_id":    claim.RewardID,
			"member_id":    claim.MemberID,
			"fulfiller_id": fulfillerID,
		})
		return claim
	})
}

func (c *Coordinator) UpdateClaim(ctx context.Context, id string, patch model.ClaimPatch) (*model.RewardClaim, error) {
	return run(ctx, c, "update_claim", func(t *tx) *model.RewardClaim {
		claim := t.doc.Claim(id)
		if claim == nil {
			return nil
		}
		patch.Apply(claim)
		return claim
	})
}

func (c *Coordinator) DeleteClaim(ctx context.Context, id string) (bool, error) {
	return c.mutate(ctx, "delete_claim", func(t *tx) bool {
		return removeByID(&t.doc.RewardClaims, func(rc *model.RewardClaim) bool { return rc.ID == id })
	})
}

func (c *Coordinator) DeleteAllClaims(ctx context.Context) (int, error) {
	n := 0
	_, err := c.mutate(ctx, "delete_all_claims", func(t *tx) bool {
		n = len(t.doc.RewardClaims)
		t.doc.RewardClaims = []*model.RewardClaim{}
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
