// Package assistant provides the email assistant facade.
//
// The Assistant owns the long-lived EmailState across turns. Each turn
// merges caller-supplied email context, clones the state into the workflow
// executor, and commits the result back; query operations read the
// persisted copy.
//
// Concurrency: overlapping HandleRequest calls on one Assistant are
// serialized (the turn lock is held for the whole run, including provider
// calls). Queries and bookkeeping mutations synchronize on a separate
// state lock, so they remain available while a turn is in flight and see
// the last committed state.
package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/graph"
	"github.com/jeeves-cluster-organization/mailmind/engine/observability"
	"github.com/jeeves-cluster-organization/mailmind/engine/stages"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
	"github.com/jeeves-cluster-organization/mailmind/eventbus"
)

// Assistant drives the email workflow pipeline over persistent state.
type Assistant struct {
	cfg      *config.PipelineConfig
	executor *graph.Executor
	logger   stages.Logger
	events   *eventbus.Bus

	turnMu  sync.Mutex // serializes whole turns
	stateMu sync.RWMutex
	state   *state.EmailState
	lastRun *graph.RunReport
}

// Option configures an Assistant.
type Option func(*options)

type options struct {
	cfg    *config.PipelineConfig
	logger stages.Logger
	events *eventbus.Bus
}

// WithLogger sets the logger for the assistant and all stages.
func WithLogger(logger stages.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithEvents attaches an event bus; the executor and facade publish
// lifecycle events to it.
func WithEvents(bus *eventbus.Bus) Option {
	return func(o *options) { o.events = bus }
}

// WithPipeline overrides the default email pipeline topology.
func WithPipeline(cfg *config.PipelineConfig) Option {
	return func(o *options) { o.cfg = cfg }
}

// New creates an Assistant backed by the given generation provider.
func New(provider stages.Provider, opts ...Option) (*Assistant, error) {
	o := &options{
		cfg:    config.EmailPipeline(),
		logger: stages.NopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}

	registry, err := stages.Registry(o.cfg, provider, o.logger)
	if err != nil {
		return nil, fmt.Errorf("build stage registry: %w", err)
	}
	executor, err := graph.NewExecutor(o.cfg, registry, o.logger, o.events)
	if err != nil {
		return nil, fmt.Errorf("build executor: %w", err)
	}

	return &Assistant{
		cfg:      o.cfg,
		executor: executor,
		logger:   o.logger.Bind("component", "assistant"),
		events:   o.events,
		state:    state.NewEmailState(),
	}, nil
}

// HandleRequest runs one assistant turn: merges the caller-supplied email
// context into the persisted state, threads a working copy through the
// pipeline, commits the result, and returns the assistant's reply.
//
// The context merge is committed even when the run later fails; there is
// no rollback of partial mutations.
func (a *Assistant) HandleRequest(ctx context.Context, userInput string, emailContext *state.EmailContext) (string, error) {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()

	requestID := uuid.NewString()
	startTime := time.Now()
	logger := a.logger.Bind("request_id", requestID)
	logger.Info("turn_started")

	a.stateMu.Lock()
	a.state.MergeEmailContext(emailContext)
	working := a.state.Clone()
	a.stateMu.Unlock()

	working.CurrentTask = ""
	working.AppendMessage(state.RoleUser, userInput)

	report, err := a.executor.Run(ctx, working, requestID)
	if err != nil {
		observability.RecordTurn(a.cfg.Name, "error", time.Since(startTime))
		logger.Error("turn_failed", "error", err.Error())
		return "", fmt.Errorf("handle request: %w", err)
	}

	a.stateMu.Lock()
	a.state = working
	a.lastRun = report
	a.stateMu.Unlock()

	last := working.LastMessage()
	if last == nil || last.Role != state.RoleAssistant {
		observability.RecordTurn(a.cfg.Name, "error", time.Since(startTime))
		return "", fmt.Errorf("pipeline produced no assistant reply")
	}

	observability.RecordTurn(a.cfg.Name, "success", time.Since(startTime))
	a.publish(ctx, &eventbus.TurnCompleted{
		RequestID:  requestID,
		Pipeline:   a.cfg.Name,
		Task:       working.CurrentTask,
		LLMCalls:   report.LLMCalls,
		DurationMS: report.DurationMS,
	})
	logger.Info("turn_completed", "task", working.CurrentTask, "llm_calls", report.LLMCalls)

	return last.Content, nil
}

// LastRun returns the report of the most recent completed turn, or nil.
func (a *Assistant) LastRun() *graph.RunReport {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.lastRun
}

func (a *Assistant) publish(ctx context.Context, event eventbus.Message) {
	if a.events == nil {
		return
	}
	_ = a.events.Publish(ctx, event)
}
