package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// updateSettings merges arbitrary keys into the settings map. family_name
// is routed to the document's family name instead.
func (d *Dispatcher) updateSettings(ctx context.Context, data []byte) (any, error) {
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, invalid(fmt.Sprintf("decode payload: %v", err))
	}
	delete(values, "id")
	delete(values, "type")

	if raw, ok := values["family_name"]; ok {
		delete(values, "family_name")
		name, ok := raw.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, invalid("family_name must be a non-empty string")
		}
		if _, err := d.coord.UpdateFamilyName(ctx, strings.TrimSpace(name)); err != nil {
			return nil, err
		}
	}

	if len(values) > 0 {
		if _, err := d.coord.UpdateSettings(ctx, values); err != nil {
			return nil, err
		}
	}
	return map[string]any{"success": true}, nil
}
