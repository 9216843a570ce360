package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/jeeves-cluster-organization/mailmind/engine/state"
	"github.com/jeeves-cluster-organization/mailmind/eventbus"
)

// MarkFollowUpComplete marks a thread's follow-up record complete, or a
// single item when followUpID is non-empty, stamping completion time.
// Unknown thread or item IDs are a no-op.
func (a *Assistant) MarkFollowUpComplete(ctx context.Context, threadID, followUpID string) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	record, ok := a.state.FollowUps[threadID]
	if !ok {
		return
	}

	now := time.Now().UTC()
	if followUpID != "" {
		for i := range record.Items {
			if record.Items[i].ID == followUpID {
				record.Items[i].Status = state.FollowUpCompleted
				record.Items[i].CompletedAt = &now
			}
		}
	} else {
		record.Status = state.FollowUpCompleted
		record.CompletedAt = &now
	}

	a.logger.Info("follow_up_completed", "thread_id", threadID, "follow_up_id", followUpID)
	a.publish(ctx, &eventbus.FollowUpCompleted{ThreadID: threadID, FollowUpID: followUpID})
}

// UpdatePriority sets a thread's priority. The value is validated against
// the four-level enumeration; on failure no state changes. When stats
// exist for the thread, one priority-history entry is appended.
func (a *Assistant) UpdatePriority(ctx context.Context, threadID, priority string) error {
	p, err := state.PriorityFromString(priority)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, priority)
	}

	a.stateMu.Lock()
	a.state.Priorities[threadID] = string(p)
	if stats, ok := a.state.Stats[threadID]; ok {
		stats.PriorityHistory = append(stats.PriorityHistory, state.PriorityEntry{
			Timestamp: time.Now().UTC(),
			Priority:  string(p),
		})
	}
	a.stateMu.Unlock()

	a.logger.Info("priority_updated", "thread_id", threadID, "priority", string(p))
	a.publish(ctx, &eventbus.PriorityChanged{ThreadID: threadID, Priority: string(p)})
	return nil
}
