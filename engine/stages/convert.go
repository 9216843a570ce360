package stages

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// Boundary conversions from parsed generation output into typed state
// records. Generation replies are free-form JSON: field shapes vary, so
// each helper accepts the shapes observed in practice and drops the rest.

func stringFromAny(v any) string {
	s, _ := v.(string)
	return s
}

func stringSliceFromAny(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func mapFromAny(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func stringMapFromAny(v any) map[string]string {
	raw := mapFromAny(v)
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		if s, ok := value.(string); ok {
			out[key] = s
		}
	}
	return out
}

// followUpItemsFromAny converts a reply fragment into follow-up items.
// Accepts a list of strings, a list of objects, or a single string.
func followUpItemsFromAny(v any) []state.FollowUpItem {
	var raw []any
	switch val := v.(type) {
	case []any:
		raw = val
	case string:
		if val == "" {
			return nil
		}
		raw = []any{val}
	default:
		return nil
	}

	items := make([]state.FollowUpItem, 0, len(raw))
	for _, entry := range raw {
		switch val := entry.(type) {
		case string:
			items = append(items, state.FollowUpItem{
				ID:          uuid.NewString(),
				Description: val,
				Status:      state.FollowUpPending,
			})
		case map[string]any:
			item := state.FollowUpItem{
				ID:     stringFromAny(val["id"]),
				Status: state.FollowUpPending,
			}
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			for _, key := range []string{"description", "item", "task", "content"} {
				if s := stringFromAny(val[key]); s != "" {
					item.Description = s
					break
				}
			}
			if s := stringFromAny(val["status"]); s == string(state.FollowUpCompleted) {
				item.Status = state.FollowUpCompleted
			}
			items = append(items, item)
		}
	}
	return items
}

// followUpRecordFromAny converts a reply fragment into a pending
// follow-up record stamped at now.
func followUpRecordFromAny(v any, now time.Time) *state.FollowUpRecord {
	items := followUpItemsFromAny(v)
	if m := mapFromAny(v); m != nil {
		items = followUpItemsFromAny(m["items"])
	}
	if len(items) == 0 {
		return nil
	}
	return &state.FollowUpRecord{
		Items:     items,
		CreatedAt: now,
		Status:    state.FollowUpPending,
	}
}
