package model

import (
	"encoding/json"
	"time"
)

const (
	DefaultRewardCost = 50
	DefaultRewardIcon = "mdi:gift"
	// UnlimitedQuantity marks a reward that never runs out.
	UnlimitedQuantity = -1
)

type Reward struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PointsCost  int       `json:"points_cost"`
	Icon        string    `json:"icon"`
	ImageURL    *string   `json:"image_url"`
	Available   bool      `json:"available"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewReward(name string, now time.Time) Reward {
	return Reward{
		ID:         NewID(),
		Name:       name,
		PointsCost: DefaultRewardCost,
		Icon:       DefaultRewardIcon,
		Available:  true,
		Quantity:   UnlimitedQuantity,
		CreatedAt:  now,
	}
}

func (r *Reward) UnmarshalJSON(data []byte) error {
	type alias Reward
	a := struct {
		alias
		CreatedAt timestamp `json:"created_at"`
	}{alias: alias{
		PointsCost: DefaultRewardCost,
		Icon:       DefaultRewardIcon,
		Available:  true,
		Quantity:   UnlimitedQuantity,
	}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Reward(a.alias)
	r.CreatedAt = a.CreatedAt.Time
	return nil
}

type ClaimStatus string

const (
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusApproved is accepted on load but never produced.
	ClaimStatusApproved  ClaimStatus = "approved"
	ClaimStatusFulfilled ClaimStatus = "fulfilled"
)

// RewardClaim records a redemption. PointsSpent is the reward cost at claim
// time and does not follow later edits to the reward.
type RewardClaim struct {
	ID          string      `json:"id"`
	RewardID    string      `json:"reward_id"`
	MemberID    string      `json:"member_id"`
	PointsSpent int         `json:"points_spent"`
	Status      ClaimStatus `json:"status"`
	ClaimedAt   time.Time   `json:"claimed_at"`
	FulfilledAt *time.Time  `json:"fulfilled_at"`
}

func (rc *RewardClaim) UnmarshalJSON(data []byte) error {
	type alias RewardClaim
	a := struct {
		alias
		ClaimedAt   timestamp `json:"claimed_at"`
		FulfilledAt timestamp `json:"fulfilled_at"`
	}{alias: alias{Status: ClaimStatusPending}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*rc = RewardClaim(a.alias)
	rc.ClaimedAt = a.ClaimedAt.Time
	rc.FulfilledAt = a.FulfilledAt.ptr()
	return nil
}
