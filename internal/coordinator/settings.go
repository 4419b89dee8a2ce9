package coordinator

import (
	"context"
	"maps"
)

// UpdateSettings merges values into the settings map and returns the result.
func (c *Coordinator) UpdateSettings(ctx context.Context, values map[string]any) (map[string]any, error) {
	var out map[string]any
	_, err := c.mutate(ctx, "update_settings", func(t *tx) bool {
		maps.Copy(t.doc.Settings, values)
		out = maps.Clone(t.doc.Settings)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Coordinator) UpdateFamilyName(ctx context.Context, name string) (string, error) {
	_, err := c.mutate(ctx, "update_family_name", func(t *tx) bool {
		if name == "" {
			return false
		}
		t.doc.FamilyName = name
		return true
	})
	if err != nil {
		return "", err
	}
	return name, nil
}
