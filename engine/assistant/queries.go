package assistant

import (
	"fmt"
	"sort"
	"time"

	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// PendingFollowUp is one pending follow-up annotated with its thread's
// priority.
type PendingFollowUp struct {
	ThreadID  string               `json:"thread_id"`
	Items     []state.FollowUpItem `json:"items"`
	CreatedAt time.Time            `json:"created_at"`
	Priority  state.Priority       `json:"priority"`
}

// PendingFollowUps returns all pending follow-ups sorted by priority rank
// (urgent first), ties broken by earlier creation time.
func (a *Assistant) PendingFollowUps() []PendingFollowUp {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	pending := make([]PendingFollowUp, 0, len(a.state.FollowUps))
	for threadID, record := range a.state.FollowUps {
		if record.Status != state.FollowUpPending {
			continue
		}
		clone := record.Clone()
		pending = append(pending, PendingFollowUp{
			ThreadID:  threadID,
			Items:     clone.Items,
			CreatedAt: record.CreatedAt,
			Priority:  a.state.PriorityFor(threadID),
		})
	}

	sort.SliceStable(pending, func(i, j int) bool {
		ri, rj := pending[i].Priority.Rank(), pending[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending
}

// ThreadSummary is the comprehensive view of one email thread.
type ThreadSummary struct {
	ThreadID  string                  `json:"thread_id"`
	Thread    *state.Thread           `json:"thread"`
	Stats     *state.ThreadStats      `json:"stats,omitempty"`
	FollowUps *state.FollowUpRecord   `json:"follow_ups,omitempty"`
	Priority  state.Priority          `json:"priority"`
	Drafts    map[string]*state.Draft `json:"drafts"`
}

// ThreadSummary returns the thread record, derived stats, follow-ups,
// priority (default medium), and the drafts linked to the thread.
func (a *Assistant) ThreadSummary(threadID string) (*ThreadSummary, error) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	thread, ok := a.state.Threads[threadID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
	}

	summary := &ThreadSummary{
		ThreadID: threadID,
		Thread:   thread,
		Priority: a.state.PriorityFor(threadID),
		Drafts:   make(map[string]*state.Draft),
	}
	if stats, ok := a.state.Stats[threadID]; ok {
		summary.Stats = stats.Clone()
	}
	if record, ok := a.state.FollowUps[threadID]; ok {
		summary.FollowUps = record.Clone()
	}
	for id, draft := range a.state.Drafts {
		if draft.ThreadID == threadID {
			summary.Drafts[id] = draft.Clone()
		}
	}
	return summary, nil
}

// ContactThread is one thread a contact participates in.
type ContactThread struct {
	ThreadID        string             `json:"thread_id"`
	Stats           *state.ThreadStats `json:"stats,omitempty"`
	LastInteraction time.Time          `json:"last_interaction"`
	Priority        state.Priority     `json:"priority"`
}

// InteractionSummary aggregates a contact's threads.
type InteractionSummary struct {
	TotalThreads         int                    `json:"total_threads"`
	PendingFollowUps     int                    `json:"pending_follow_ups"`
	PriorityDistribution map[state.Priority]int `json:"priority_distribution"`
}

// ContactHistory is the interaction history with one contact.
type ContactHistory struct {
	ContactID string             `json:"contact_id"`
	Contact   *state.Contact     `json:"contact"`
	Threads   []ContactThread    `json:"threads"`
	Summary   InteractionSummary `json:"interaction_summary"`
}

// ContactHistory returns, for every thread whose participants include the
// contact, that thread's stats, last interaction, and priority, plus an
// aggregate summary.
func (a *Assistant) ContactHistory(contactID string) (*ContactHistory, error) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	contact, ok := a.state.Contacts[contactID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}

	history := &ContactHistory{
		ContactID: contactID,
		Contact:   contact,
		Threads:   make([]ContactThread, 0),
		Summary: InteractionSummary{
			PriorityDistribution: state.NewPriorityHistogram(),
		},
	}

	for _, threadID := range sortedKeys(a.state.Threads) {
		thread := a.state.Threads[threadID]
		if !contains(thread.Participants, contactID) {
			continue
		}

		priority := a.state.PriorityFor(threadID)
		ct := ContactThread{
			ThreadID:        threadID,
			LastInteraction: thread.LastInteraction,
			Priority:        priority,
		}
		if stats, ok := a.state.Stats[threadID]; ok {
			ct.Stats = stats.Clone()
		}
		history.Threads = append(history.Threads, ct)

		history.Summary.PriorityDistribution[priority]++
		if record, ok := a.state.FollowUps[threadID]; ok && record.Status == state.FollowUpPending {
			history.Summary.PendingFollowUps++
		}
	}
	history.Summary.TotalThreads = len(history.Threads)

	return history, nil
}

// Analytics aggregates email interactions inside a timeframe window.
type Analytics struct {
	Timeframe            string                 `json:"timeframe"`
	TotalThreads         int                    `json:"total_threads"`
	PriorityDistribution map[state.Priority]int `json:"priority_distribution"`
	PendingFollowUps     int                    `json:"pending_follow_ups"`
	CompletedFollowUps   int                    `json:"completed_follow_ups"`
	Topics               []string               `json:"topics"`
	SentimentSummary     []string               `json:"sentiment_summary"`
}

// Timeframe selectors for Analytics.
const (
	TimeframeDay   = "day"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
)

// Analytics scans stats for threads whose last interaction falls inside
// the window (now minus 1 day / 7 days / 30 days) and aggregates thread
// counts, priorities, topics, follow-up states, and windowed sentiments.
// Topics come back deterministically sorted; threads scan in ID order so
// the sentiment sequence is deterministic too.
func (a *Assistant) Analytics(timeframe string) (*Analytics, error) {
	var window time.Duration
	switch timeframe {
	case TimeframeDay:
		window = 24 * time.Hour
	case TimeframeWeek:
		window = 7 * 24 * time.Hour
	case TimeframeMonth:
		window = 30 * 24 * time.Hour
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeframe, timeframe)
	}
	cutoff := time.Now().UTC().Add(-window)

	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	analytics := &Analytics{
		Timeframe:            timeframe,
		PriorityDistribution: state.NewPriorityHistogram(),
		Topics:               make([]string, 0),
		SentimentSummary:     make([]string, 0),
	}

	allTopics := state.NewTopicSet()
	for _, threadID := range sortedKeys(a.state.Stats) {
		stats := a.state.Stats[threadID]
		if stats.LastInteraction.Before(cutoff) {
			continue
		}

		analytics.TotalThreads++
		analytics.PriorityDistribution[a.state.PriorityFor(threadID)]++
		allTopics.Union(stats.Topics.Sorted())

		if record, ok := a.state.FollowUps[threadID]; ok {
			if record.Status == state.FollowUpPending {
				analytics.PendingFollowUps++
			} else {
				analytics.CompletedFollowUps++
			}
		}

		for _, entry := range stats.SentimentHistory {
			if !entry.Timestamp.Before(cutoff) {
				analytics.SentimentSummary = append(analytics.SentimentSummary, entry.Sentiment)
			}
		}
	}
	analytics.Topics = allTopics.Sorted()

	return analytics, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
