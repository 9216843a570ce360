package stages

import (
	"context"
	"time"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// Analyzer performs the multi-dimension thread analysis. A parsed reply
// is stored under memory["analysis"] and, when it names a thread, drives
// the richest state update in the pipeline: stats, sentiment and priority
// history, action items, deadlines, follow-ups, priorities, and suggested
// response templates.
type Analyzer struct {
	base
}

// NewAnalyzer creates the analysis stage.
func NewAnalyzer(cfg *config.StageConfig, provider Provider, logger Logger) *Analyzer {
	return &Analyzer{base: newBase(cfg, provider, logger)}
}

// Run implements Stage.
func (a *Analyzer) Run(ctx context.Context, st *state.EmailState) (*Outcome, error) {
	reply, err := a.generate(ctx, analyzePrompt(st))
	if err != nil {
		return nil, err
	}

	analysis, err := extractJSONObject(reply)
	if err != nil {
		return a.skipped(reply, err.Error()), nil
	}

	st.Memory[state.MemoryKeyAnalysis] = analysis

	threadID := stringFromAny(analysis["thread_id"])
	if threadID == "" {
		return a.applied(nil), nil
	}

	now := time.Now().UTC()
	stats := st.EnsureStats(threadID, now)

	stats.Topics.Union(stringSliceFromAny(analysis["topics"]))

	if sentiment := stringFromAny(analysis["sentiment"]); sentiment != "" {
		stats.SentimentHistory = append(stats.SentimentHistory, state.SentimentEntry{
			Timestamp: now,
			Sentiment: sentiment,
		})
	}

	// Embedded priority strings are recorded without validation.
	if priority := stringFromAny(analysis["priority"]); priority != "" {
		stats.PriorityHistory = append(stats.PriorityHistory, state.PriorityEntry{
			Timestamp: now,
			Priority:  priority,
		})
		st.Priorities[threadID] = priority
	}

	stats.ActionItems = append(stats.ActionItems, stringSliceFromAny(analysis["action_items"])...)
	stats.Deadlines = append(stats.Deadlines, stringSliceFromAny(analysis["deadlines"])...)

	if record := followUpRecordFromAny(analysis["follow_ups"], now); record != nil {
		st.FollowUps[threadID] = record
	}

	for name, content := range stringMapFromAny(analysis["suggested_templates"]) {
		st.ResponseTemplates[name] = content
	}

	return a.applied(map[string]any{"thread_id": threadID}), nil
}
