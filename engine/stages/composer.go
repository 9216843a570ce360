package stages

import (
	"context"
	"time"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// Composer drafts email content. The draft is stored in the drafts map
// with a context snapshot; it is not appended to the conversation log,
// the response generator produces the caller-visible reply.
type Composer struct {
	base
}

// NewComposer creates the composition stage.
func NewComposer(cfg *config.StageConfig, provider Provider, logger Logger) *Composer {
	return &Composer{base: newBase(cfg, provider, logger)}
}

// Run implements Stage.
func (c *Composer) Run(ctx context.Context, st *state.EmailState) (*Outcome, error) {
	reply, err := c.generate(ctx, composePrompt(st))
	if err != nil {
		return nil, err
	}

	draft := &state.Draft{
		ID:        state.NewDraftID(),
		Content:   reply,
		Context:   st.ContextSnapshot(),
		CreatedAt: time.Now().UTC(),
	}
	st.Drafts[draft.ID] = draft

	c.logger.Debug("draft_stored", "draft_id", draft.ID)
	return c.applied(map[string]any{"draft_id": draft.ID}), nil
}
