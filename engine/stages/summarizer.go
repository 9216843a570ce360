package stages

import (
	"context"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// Summarizer digests the known threads into plain text under
// memory["summary"].
type Summarizer struct {
	base
}

// NewSummarizer creates the summarization stage.
func NewSummarizer(cfg *config.StageConfig, provider Provider, logger Logger) *Summarizer {
	return &Summarizer{base: newBase(cfg, provider, logger)}
}

// Run implements Stage.
func (s *Summarizer) Run(ctx context.Context, st *state.EmailState) (*Outcome, error) {
	reply, err := s.generate(ctx, summarizePrompt(st))
	if err != nil {
		return nil, err
	}

	st.Memory[state.MemoryKeySummary] = reply
	return s.applied(nil), nil
}
