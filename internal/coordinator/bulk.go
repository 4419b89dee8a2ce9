package coordinator

import (
	"context"

	"github.com/dukerupert/famdo/internal/model"
)

// ClearCounts reports how many entities ClearAll removed.
type ClearCounts struct {
	Chores       int `json:"chores"`
	Rewards      int `json:"rewards"`
	RewardClaims int `json:"reward_claims"`
	Todos        int `json:"todos"`
	Events       int `json:"events"`
	Members      int `json:"members"`
}

// ClearAll empties the document. With keepMembers the members stay with
// their points reset to zero; otherwise they go too and the family name
// returns to its default. Settings are always cleared.
func (c *Coordinator) ClearAll(ctx context.Context, keepMembers bool) (ClearCounts, error) {
	var counts ClearCounts
	_, err := c.mutate(ctx, "clear_all", func(t *tx) bool {
		d := t.doc
		counts = ClearCounts{
			Chores:       len(d.Chores),
			Rewards:      len(d.Rewards),
			RewardClaims: len(d.RewardClaims),
			Todos:        len(d.Todos),
			Events:       len(d.CalendarEvents),
		}
		d.Chores = []*model.Chore{}
		d.Rewards = []*model.Reward{}
		d.RewardClaims = []*model.RewardClaim{}
		d.Todos = []*model.TodoItem{}
		d.CalendarEvents = []*model.CalendarEvent{}
		if keepMembers {
			for _, m := range d.Members {
				m.Points = 0
			}
		} else {
			counts.Members = len(d.Members)
			d.Members = []*model.Member{}
			d.FamilyName = model.DefaultFamilyName
		}
		d.Settings = map[string]any{}
		t.logger.Warn("cleared all data", "keep_members", keepMembers, "counts", counts)
		return true
	})
	if err != nil {
		return ClearCounts{}, err
	}
	return counts, nil
}
