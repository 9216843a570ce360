// Package stages provides the stage functions of the email assistant
// pipeline.
//
// Each stage is a transformation over *state.EmailState that makes at most
// one generation call. Stages that expect structured replies degrade to
// "skipped" when the reply cannot be parsed: the state is left untouched
// for that stage and the run continues, so a turn never aborts because of
// one malformed reply.
package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/observability"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// Provider is the interface for the external generation service.
// The reply is a single text blob; no schema is enforced by the provider,
// parsing and validation are the caller's responsibility.
type Provider interface {
	Generate(ctx context.Context, model string, prompt string, options map[string]any) (string, error)
}

// Logger is the interface for logging.
type Logger interface {
	Info(msg string, fields ...any)
	Debug(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Bind(fields ...any) Logger
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...any)  {}
func (NopLogger) Debug(msg string, fields ...any) {}
func (NopLogger) Warn(msg string, fields ...any)  {}
func (NopLogger) Error(msg string, fields ...any) {}
func (n NopLogger) Bind(fields ...any) Logger     { return n }

// ApplyStatus reports whether a stage applied its state update.
type ApplyStatus string

const (
	// StatusApplied indicates the stage parsed its reply and updated state.
	StatusApplied ApplyStatus = "applied"
	// StatusSkipped indicates the reply could not be parsed; the stage left
	// state unchanged.
	StatusSkipped ApplyStatus = "skipped"
)

// Outcome is the result of one stage execution. RawReply carries the
// provider text for diagnostics, including when parsing failed.
type Outcome struct {
	Stage    string         `json:"stage"`
	Status   ApplyStatus    `json:"status"`
	RawReply string         `json:"raw_reply,omitempty"`
	LLMCalls int            `json:"llm_calls"`
	Output   map[string]any `json:"output,omitempty"`
}

// Stage is one node of the workflow graph.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *state.EmailState) (*Outcome, error)
}

// base carries the shared wiring of all stages.
type base struct {
	cfg      *config.StageConfig
	provider Provider
	logger   Logger
}

func newBase(cfg *config.StageConfig, provider Provider, logger Logger) base {
	if logger == nil {
		logger = NopLogger{}
	}
	return base{
		cfg:      cfg,
		provider: provider,
		logger:   logger.Bind("stage", cfg.Name),
	}
}

// Name returns the configured stage name.
func (b base) Name() string { return b.cfg.Name }

// generate issues the single provider call for a stage, applying the
// configured model role and sampling options.
func (b base) generate(ctx context.Context, prompt string) (string, error) {
	options := make(map[string]any)
	if b.cfg.Temperature != nil {
		options["temperature"] = *b.cfg.Temperature
	}
	if b.cfg.MaxTokens != nil {
		options["max_tokens"] = *b.cfg.MaxTokens
	}

	model := b.cfg.ModelRole
	if model == "" {
		model = "default"
	}

	start := time.Now()
	reply, err := b.provider.Generate(ctx, model, prompt, options)
	if err != nil {
		observability.RecordLLMCall(model, "error", time.Since(start))
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	observability.RecordLLMCall(model, "success", time.Since(start))

	b.logger.Debug(fmt.Sprintf("%s_llm_response", b.cfg.Name),
		"response_length", len(reply),
		"response_preview", truncate(reply, 200),
	)
	return reply, nil
}

func (b base) applied(output map[string]any) *Outcome {
	return &Outcome{Stage: b.cfg.Name, Status: StatusApplied, LLMCalls: 1, Output: output}
}

func (b base) skipped(rawReply string, reason string) *Outcome {
	b.logger.Warn(fmt.Sprintf("%s_reply_unparseable", b.cfg.Name),
		"reason", reason,
		"response_preview", truncate(rawReply, 200),
	)
	return &Outcome{Stage: b.cfg.Name, Status: StatusSkipped, RawReply: rawReply, LLMCalls: 1}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
