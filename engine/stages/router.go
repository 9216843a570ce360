package stages

import (
	"context"
	"strings"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// taskSynonyms maps shorthand classifications to canonical task names.
var taskSynonyms = map[string]string{
	"compose":   config.StageComposeEmail,
	"analyze":   config.StageAnalyzeEmail,
	"summarize": config.StageSummarizeEmail,
	"respond":   config.StageGenerateResponse,
}

// Router classifies the last message into one of the task stages. The
// classification feeds the pipeline's single conditional branch point:
// unrecognized labels pass through unchanged and fall to the routing
// default, the response generator.
type Router struct {
	base
}

// NewRouter creates the routing stage.
func NewRouter(cfg *config.StageConfig, provider Provider, logger Logger) *Router {
	return &Router{base: newBase(cfg, provider, logger)}
}

// Run implements Stage.
func (r *Router) Run(ctx context.Context, st *state.EmailState) (*Outcome, error) {
	reply, err := r.generate(ctx, routePrompt(st.LastMessage()))
	if err != nil {
		return nil, err
	}

	task := NormalizeTask(reply)
	st.CurrentTask = task

	r.logger.Debug("request_routed", "task", task)
	return r.applied(map[string]any{config.TaskOutputKey: task}), nil
}

// NormalizeTask canonicalizes a raw classification reply: trimmed,
// lowercased, and passed through the synonym table. Labels outside the
// canonical set are returned as-is.
func NormalizeTask(raw string) string {
	task := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := taskSynonyms[task]; ok {
		return canonical
	}
	return task
}
