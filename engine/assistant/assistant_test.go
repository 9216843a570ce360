package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
	"github.com/jeeves-cluster-organization/mailmind/eventbus"
)

// roleProvider returns a canned reply per model role.
type roleProvider struct {
	replies map[string]string
}

func (p roleProvider) Generate(ctx context.Context, model string, prompt string, options map[string]any) (string, error) {
	if reply, ok := p.replies[model]; ok {
		return reply, nil
	}
	return "ok", nil
}

func newTestAssistant(t *testing.T, replies map[string]string, opts ...Option) *Assistant {
	t.Helper()
	a, err := New(roleProvider{replies: replies}, opts...)
	require.NoError(t, err)
	return a
}

func seedFollowUp(a *Assistant, threadID, priority string, createdAt time.Time, status state.FollowUpStatus) {
	a.state.FollowUps[threadID] = &state.FollowUpRecord{
		Items:     []state.FollowUpItem{{ID: "i-" + threadID, Description: "follow up on " + threadID, Status: state.FollowUpPending}},
		CreatedAt: createdAt,
		Status:    status,
	}
	if priority != "" {
		a.state.Priorities[threadID] = priority
	}
}

// =============================================================================
// Turn Tests
// =============================================================================

func TestHandleRequest(t *testing.T) {
	replies := map[string]string{
		"router":    "analyze",
		"analysis":  `{"thread_id": "t1", "topics": ["meeting"], "sentiment": "positive"}`,
		"analyzer":  `{"thread_id": "t1", "priority": "high", "follow_ups": ["confirm the slot"], "topics": ["scheduling"]}`,
		"responder": "Hi John, confirming the meeting slot.",
	}
	a := newTestAssistant(t, replies)

	emailContext := &state.EmailContext{
		Threads: map[string]*state.Thread{
			"t1": {Subject: "Meeting", Participants: []string{"john@example.com"}},
		},
		Contacts: map[string]*state.Contact{
			"john@example.com": {Name: "John"},
		},
	}

	reply, err := a.HandleRequest(context.Background(), "help me reply to John", emailContext)
	require.NoError(t, err)
	assert.Equal(t, "Hi John, confirming the meeting slot.", reply)

	t.Run("commits the working state", func(t *testing.T) {
		assert.Equal(t, config.StageAnalyzeEmail, a.state.CurrentTask)
		require.Len(t, a.state.Messages, 2)
		assert.Equal(t, state.RoleUser, a.state.Messages[0].Role)
		assert.Equal(t, state.RoleAssistant, a.state.Messages[1].Role)
		assert.Contains(t, a.state.Threads, "t1")
		assert.Equal(t, "high", a.state.Priorities["t1"])
		require.Contains(t, a.state.FollowUps, "t1")
		assert.Equal(t, state.FollowUpPending, a.state.FollowUps["t1"].Status)
	})

	t.Run("records the run report", func(t *testing.T) {
		report := a.LastRun()
		require.NotNil(t, report)
		assert.True(t, report.Visited(config.StageAnalyzeEmail))
		assert.False(t, report.Visited(config.StageComposeEmail))
		assert.Equal(t, 4, report.LLMCalls)
	})

	t.Run("second turn accumulates on the same state", func(t *testing.T) {
		_, err := a.HandleRequest(context.Background(), "and summarize it", nil)
		require.NoError(t, err)
		assert.Len(t, a.state.Messages, 4)
	})
}

func TestHandleRequestResilience(t *testing.T) {
	// Analyzer replies prose instead of JSON: the stage skips, the run
	// still ends with a non-empty reply from the terminal stage.
	replies := map[string]string{
		"router":    "analyze",
		"analyzer":  "I could not produce structured output, sorry.",
		"responder": "Here is what I can tell you about the thread.",
	}
	a := newTestAssistant(t, replies)

	reply, err := a.HandleRequest(context.Background(), "analyze the thread", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
	assert.Nil(t, a.state.Memory[state.MemoryKeyAnalysis], "skipped analysis leaves no memory entry")

	report := a.LastRun()
	require.NotNil(t, report)
	visited := false
	for _, record := range report.Records {
		if record.Stage == config.StageAnalyzeEmail {
			visited = true
			assert.Equal(t, "skipped", record.Status)
		}
	}
	assert.True(t, visited)
}

// =============================================================================
// Follow-Up Query Tests
// =============================================================================

func TestPendingFollowUps(t *testing.T) {
	a := newTestAssistant(t, nil)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	seedFollowUp(a, "t1", "urgent", day.Add(9*time.Hour), state.FollowUpPending)
	seedFollowUp(a, "t2", "high", day.Add(8*time.Hour), state.FollowUpPending)
	seedFollowUp(a, "t3", "urgent", day.Add(8*time.Hour+30*time.Minute), state.FollowUpPending)
	seedFollowUp(a, "t4", "low", day, state.FollowUpCompleted)

	pending := a.PendingFollowUps()
	require.Len(t, pending, 3, "completed records are excluded")

	// Urgent before high; among urgent, earlier creation first.
	assert.Equal(t, "t3", pending[0].ThreadID)
	assert.Equal(t, "t1", pending[1].ThreadID)
	assert.Equal(t, "t2", pending[2].ThreadID)

	t.Run("unvalidated priorities rank as medium", func(t *testing.T) {
		seedFollowUp(a, "t5", "blocker", day, state.FollowUpPending)
		pending := a.PendingFollowUps()
		require.Len(t, pending, 4)
		assert.Equal(t, "t5", pending[3].ThreadID)
		assert.Equal(t, state.PriorityMedium, pending[3].Priority)
	})

	t.Run("returned items do not alias state", func(t *testing.T) {
		pending := a.PendingFollowUps()
		pending[0].Items[0].Status = state.FollowUpCompleted
		assert.Equal(t, state.FollowUpPending, a.state.FollowUps["t3"].Items[0].Status)
	})
}

func TestMarkFollowUpComplete(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("whole record", func(t *testing.T) {
		a := newTestAssistant(t, nil)
		seedFollowUp(a, "t1", "", now, state.FollowUpPending)

		a.MarkFollowUpComplete(ctx, "t1", "")
		record := a.state.FollowUps["t1"]
		assert.Equal(t, state.FollowUpCompleted, record.Status)
		require.NotNil(t, record.CompletedAt)
	})

	t.Run("single item leaves the record pending", func(t *testing.T) {
		a := newTestAssistant(t, nil)
		seedFollowUp(a, "t1", "", now, state.FollowUpPending)

		a.MarkFollowUpComplete(ctx, "t1", "i-t1")
		record := a.state.FollowUps["t1"]
		assert.Equal(t, state.FollowUpPending, record.Status)
		assert.Equal(t, state.FollowUpCompleted, record.Items[0].Status)
		require.NotNil(t, record.Items[0].CompletedAt)
	})

	t.Run("unknown thread is a no-op", func(t *testing.T) {
		a := newTestAssistant(t, nil)
		a.MarkFollowUpComplete(ctx, "missing", "")
		assert.Empty(t, a.state.FollowUps)
	})

	t.Run("publishes a completion event", func(t *testing.T) {
		bus := eventbus.New()
		var events []*eventbus.FollowUpCompleted
		bus.Subscribe("FollowUpCompleted", func(ctx context.Context, m eventbus.Message) error {
			events = append(events, m.(*eventbus.FollowUpCompleted))
			return nil
		})

		a := newTestAssistant(t, nil, WithEvents(bus))
		seedFollowUp(a, "t1", "", now, state.FollowUpPending)

		a.MarkFollowUpComplete(ctx, "t1", "i-t1")
		require.Len(t, events, 1)
		assert.Equal(t, "t1", events[0].ThreadID)
		assert.Equal(t, "i-t1", events[0].FollowUpID)
	})
}

// =============================================================================
// Priority Mutation Tests
// =============================================================================

func TestUpdatePriority(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects values outside the enumeration", func(t *testing.T) {
		a := newTestAssistant(t, nil)
		err := a.UpdatePriority(ctx, "t1", "blocker")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidPriority))
		assert.Empty(t, a.state.Priorities, "failed update leaves state unchanged")
	})

	t.Run("valid update appends exactly one history entry", func(t *testing.T) {
		a := newTestAssistant(t, nil)
		a.state.EnsureStats("t1", time.Now().UTC())

		require.NoError(t, a.UpdatePriority(ctx, "t1", " HIGH "))
		assert.Equal(t, "high", a.state.Priorities["t1"])
		require.Len(t, a.state.Stats["t1"].PriorityHistory, 1)
		assert.Equal(t, "high", a.state.Stats["t1"].PriorityHistory[0].Priority)
	})

	t.Run("no stats entry means no history", func(t *testing.T) {
		a := newTestAssistant(t, nil)
		require.NoError(t, a.UpdatePriority(ctx, "t1", "low"))
		assert.Equal(t, "low", a.state.Priorities["t1"])
		assert.NotContains(t, a.state.Stats, "t1")
	})
}

// =============================================================================
// Thread and Contact Query Tests
// =============================================================================

func TestThreadSummary(t *testing.T) {
	a := newTestAssistant(t, nil)

	t.Run("unknown thread", func(t *testing.T) {
		_, err := a.ThreadSummary("missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrThreadNotFound))
	})

	now := time.Now().UTC()
	a.state.Threads["t1"] = &state.Thread{Subject: "Kickoff"}
	a.state.Priorities["t1"] = "urgent"
	stats := a.state.EnsureStats("t1", now)
	stats.Topics.Add("budget")
	seedFollowUp(a, "t1", "", now, state.FollowUpPending)
	a.state.Drafts["d1"] = &state.Draft{ID: "d1", ThreadID: "t1", Content: "reply draft"}
	a.state.Drafts["d2"] = &state.Draft{ID: "d2", ThreadID: "other", Content: "unrelated"}

	summary, err := a.ThreadSummary("t1")
	require.NoError(t, err)

	assert.Equal(t, "Kickoff", summary.Thread.Subject)
	assert.Equal(t, state.PriorityUrgent, summary.Priority)
	require.NotNil(t, summary.Stats)
	assert.True(t, summary.Stats.Topics.Contains("budget"))
	require.NotNil(t, summary.FollowUps)

	t.Run("drafts are filtered by thread", func(t *testing.T) {
		require.Len(t, summary.Drafts, 1)
		assert.Contains(t, summary.Drafts, "d1")
	})

	t.Run("returned stats do not alias state", func(t *testing.T) {
		summary.Stats.Topics.Add("injected")
		assert.False(t, a.state.Stats["t1"].Topics.Contains("injected"))
	})
}

func TestContactHistory(t *testing.T) {
	a := newTestAssistant(t, nil)

	t.Run("unknown contact", func(t *testing.T) {
		_, err := a.ContactHistory("missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrContactNotFound))
	})

	now := time.Now().UTC()
	a.state.Contacts["ann@example.com"] = &state.Contact{Name: "Ann"}
	a.state.Threads["t1"] = &state.Thread{Participants: []string{"ann@example.com"}, LastInteraction: now}
	a.state.Threads["t2"] = &state.Thread{Participants: []string{"ann@example.com", "bob@example.com"}}
	a.state.Threads["t3"] = &state.Thread{Participants: []string{"bob@example.com"}}
	a.state.Priorities["t1"] = "urgent"
	a.state.EnsureStats("t1", now)
	seedFollowUp(a, "t1", "", now, state.FollowUpPending)
	seedFollowUp(a, "t3", "", now, state.FollowUpPending) // not Ann's thread

	history, err := a.ContactHistory("ann@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Ann", history.Contact.Name)
	require.Len(t, history.Threads, 2)
	assert.Equal(t, "t1", history.Threads[0].ThreadID)
	assert.Equal(t, "t2", history.Threads[1].ThreadID)
	require.NotNil(t, history.Threads[0].Stats)

	assert.Equal(t, 2, history.Summary.TotalThreads)
	assert.Equal(t, 1, history.Summary.PendingFollowUps, "only the contact's threads count")
	assert.Equal(t, 1, history.Summary.PriorityDistribution[state.PriorityUrgent])
	assert.Equal(t, 1, history.Summary.PriorityDistribution[state.PriorityMedium], "unprioritized threads count as medium")
}

// =============================================================================
// Analytics Tests
// =============================================================================

func TestAnalytics(t *testing.T) {
	a := newTestAssistant(t, nil)
	now := time.Now().UTC()

	recent := a.state.EnsureStats("t-recent", now)
	recent.LastInteraction = now.Add(-2 * time.Hour)
	recent.Topics.Union([]string{"budget", "hiring"})
	recent.SentimentHistory = []state.SentimentEntry{
		{Timestamp: now.Add(-2 * time.Hour), Sentiment: "positive"},
		{Timestamp: now.Add(-20 * 24 * time.Hour), Sentiment: "stale"},
	}
	a.state.Priorities["t-recent"] = "urgent"
	seedFollowUp(a, "t-recent", "", now, state.FollowUpPending)

	old := a.state.EnsureStats("t-old", now)
	old.LastInteraction = now.Add(-10 * 24 * time.Hour)
	old.Topics.Add("legacy")
	seedFollowUp(a, "t-old", "", now, state.FollowUpCompleted)

	t.Run("week window excludes the ten-day-old thread", func(t *testing.T) {
		analytics, err := a.Analytics(TimeframeWeek)
		require.NoError(t, err)

		assert.Equal(t, 1, analytics.TotalThreads)
		assert.Equal(t, 1, analytics.PriorityDistribution[state.PriorityUrgent])
		assert.Equal(t, []string{"budget", "hiring"}, analytics.Topics)
		assert.Equal(t, 1, analytics.PendingFollowUps)
		assert.Equal(t, 0, analytics.CompletedFollowUps)
		assert.Equal(t, []string{"positive"}, analytics.SentimentSummary, "sentiments windowed too")
	})

	t.Run("month window includes both threads", func(t *testing.T) {
		analytics, err := a.Analytics(TimeframeMonth)
		require.NoError(t, err)

		assert.Equal(t, 2, analytics.TotalThreads)
		assert.Equal(t, []string{"budget", "hiring", "legacy"}, analytics.Topics)
		assert.Equal(t, 1, analytics.CompletedFollowUps)
	})

	t.Run("invalid timeframe", func(t *testing.T) {
		_, err := a.Analytics("fortnight")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTimeframe))
	})
}
