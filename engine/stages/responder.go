package stages

import (
	"context"
	"time"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// ResponseGenerator is the terminal stage. It produces the caller-visible
// reply from everything accumulated during the run: context, the latest
// analysis, and the named thread's stats, follow-ups, priority, and the
// template library. The reply is appended to the conversation log and
// recorded as a draft.
type ResponseGenerator struct {
	base
}

// NewResponseGenerator creates the terminal response stage.
func NewResponseGenerator(cfg *config.StageConfig, provider Provider, logger Logger) *ResponseGenerator {
	return &ResponseGenerator{base: newBase(cfg, provider, logger)}
}

// Run implements Stage.
func (g *ResponseGenerator) Run(ctx context.Context, st *state.EmailState) (*Outcome, error) {
	analysis := mapFromAny(st.Memory[state.MemoryKeyAnalysis])
	threadID := stringFromAny(analysis["thread_id"])

	reply, err := g.generate(ctx, respondPrompt(st, analysis, threadID))
	if err != nil {
		return nil, err
	}

	st.AppendMessage(state.RoleAssistant, reply)

	draft := &state.Draft{
		ID:        state.NewDraftID(),
		Content:   reply,
		Context:   st.ContextSnapshot(),
		Analysis:  analysis,
		ThreadID:  threadID,
		CreatedAt: time.Now().UTC(),
		Status:    state.DraftStatusDraft,
	}
	st.Drafts[draft.ID] = draft

	g.logger.Debug("response_generated", "draft_id", draft.ID, "thread_id", threadID)
	return g.applied(map[string]any{"draft_id": draft.ID}), nil
}
