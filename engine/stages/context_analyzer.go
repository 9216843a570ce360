package stages

import (
	"context"
	"time"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// ContextAnalyzer maintains the accumulated conversational and business
// context. It asks the provider for context updates over the recent
// conversation and merges whatever parses back: context keys, follow-ups,
// priorities, and per-thread stats when the reply names a thread.
type ContextAnalyzer struct {
	base
}

// NewContextAnalyzer creates the context analysis stage.
func NewContextAnalyzer(cfg *config.StageConfig, provider Provider, logger Logger) *ContextAnalyzer {
	return &ContextAnalyzer{base: newBase(cfg, provider, logger)}
}

// Run implements Stage.
func (a *ContextAnalyzer) Run(ctx context.Context, st *state.EmailState) (*Outcome, error) {
	reply, err := a.generate(ctx, contextAnalysisPrompt(st))
	if err != nil {
		return nil, err
	}

	updates, err := extractJSONObject(reply)
	if err != nil {
		return a.skipped(reply, err.Error()), nil
	}

	now := time.Now().UTC()
	st.MergeContext(updates)

	for threadID, v := range mapFromAny(updates["follow_ups"]) {
		if record := followUpRecordFromAny(v, now); record != nil {
			st.FollowUps[threadID] = record
		}
	}

	// Priority values embedded in the reply are stored verbatim; only
	// explicit priority updates validate against the enumeration.
	for threadID, priority := range stringMapFromAny(updates["priorities"]) {
		st.Priorities[threadID] = priority
	}

	if threadID := stringFromAny(updates["thread_id"]); threadID != "" {
		stats := st.EnsureStats(threadID, now)
		stats.InteractionCount++
		stats.LastInteraction = now
		stats.Topics.Union(stringSliceFromAny(updates["topics"]))
		if sentiment := stringFromAny(updates["sentiment"]); sentiment != "" {
			stats.SentimentHistory = append(stats.SentimentHistory, state.SentimentEntry{
				Timestamp: now,
				Sentiment: sentiment,
			})
		}
	}

	return a.applied(nil), nil
}
