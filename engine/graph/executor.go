// Package graph provides the sequential workflow executor for the
// assistant pipeline.
//
// The executor walks the configured topology one stage at a time: entry →
// router → exactly one task branch (possibly the terminal stage directly)
// → terminal stage. Routing is a table lookup over the stage's output with
// a default fallback; there are no cycles, and the terminal stage is never
// double-invoked because the router targets it directly when classification
// falls through.
package graph

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
	"github.com/jeeves-cluster-organization/mailmind/engine/observability"
	"github.com/jeeves-cluster-organization/mailmind/engine/stages"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
	"github.com/jeeves-cluster-organization/mailmind/eventbus"
)

var tracer = otel.Tracer("mailmind/graph")

// ProcessingRecord is the execution record for one stage of a run.
type ProcessingRecord struct {
	Stage       string    `json:"stage"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMS  int       `json:"duration_ms"`
	Status      string    `json:"status"` // "success", "skipped", "error"
	Error       *string   `json:"error,omitempty"`
	LLMCalls    int       `json:"llm_calls"`
	RawReply    string    `json:"raw_reply,omitempty"` // set for skipped stages, for diagnostics
	Next        string    `json:"next"`
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	Pipeline   string             `json:"pipeline"`
	RequestID  string             `json:"request_id"`
	Records    []ProcessingRecord `json:"records"`
	LLMCalls   int                `json:"llm_calls"`
	StartedAt  time.Time          `json:"started_at"`
	DurationMS int                `json:"duration_ms"`
}

// Visited reports whether a stage ran (in any status) during the run.
func (r *RunReport) Visited(stage string) bool {
	for _, record := range r.Records {
		if record.Stage == stage {
			return true
		}
	}
	return false
}

// Executor runs a pipeline sequentially over a working state copy.
type Executor struct {
	cfg      *config.PipelineConfig
	registry map[string]stages.Stage
	logger   stages.Logger
	events   *eventbus.Bus // optional
}

// NewExecutor creates an executor. Every configured stage must have an
// implementation in the registry.
func NewExecutor(cfg *config.PipelineConfig, registry map[string]stages.Stage, logger stages.Logger, events *eventbus.Bus) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, name := range cfg.StageNames() {
		if _, ok := registry[name]; !ok {
			return nil, fmt.Errorf("stage '%s' has no implementation", name)
		}
	}
	if logger == nil {
		logger = stages.NopLogger{}
	}
	return &Executor{
		cfg:      cfg,
		registry: registry,
		logger:   logger.Bind("pipeline", cfg.Name),
		events:   events,
	}, nil
}

// Run executes the pipeline against st. Stage parse-skips and non-terminal
// stage errors degrade to records and the walk continues, so the terminal
// stage always gets a chance to produce the reply; only a terminal-stage
// failure or a bounds breach fails the run.
func (e *Executor) Run(ctx context.Context, st *state.EmailState, requestID string) (*RunReport, error) {
	startTime := time.Now()
	report := &RunReport{
		Pipeline:  e.cfg.Name,
		RequestID: requestID,
		Records:   make([]ProcessingRecord, 0, len(e.cfg.Stages)),
		StartedAt: startTime.UTC(),
	}

	ctx, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("mailmind.pipeline.name", e.cfg.Name),
			attribute.String("mailmind.request.id", requestID),
		))
	defer span.End()

	current := e.cfg.Entry
	hops := 0

	for current != config.StageEnd {
		hops++
		if hops > e.cfg.MaxStageHops {
			err := fmt.Errorf("pipeline '%s' exceeded %d stage hops at '%s'", e.cfg.Name, e.cfg.MaxStageHops, current)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return e.finish(report, startTime), err
		}

		sc := e.cfg.Stage(current)

		if sc.HasLLM && report.LLMCalls >= e.cfg.MaxLLMCalls {
			e.logger.Warn("stage_skipped_llm_budget", "stage", current, "llm_calls", report.LLMCalls)
			reason := "llm call budget exhausted"
			report.Records = append(report.Records, ProcessingRecord{
				Stage:       current,
				StartedAt:   time.Now().UTC(),
				CompletedAt: time.Now().UTC(),
				Status:      "skipped",
				Error:       &reason,
				Next:        sc.DefaultNext,
			})
			current = sc.DefaultNext
			continue
		}

		record, outcome, err := e.runStage(ctx, sc, st, requestID)
		if outcome != nil {
			report.LLMCalls += outcome.LLMCalls
		}

		if err != nil {
			if sc.DefaultNext == config.StageEnd {
				// Terminal stage failed: no reply can be produced.
				record.Next = config.StageEnd
				report.Records = append(report.Records, record)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return e.finish(report, startTime), fmt.Errorf("stage '%s': %w", sc.Name, err)
			}
			record.Next = sc.DefaultNext
			report.Records = append(report.Records, record)
			current = sc.DefaultNext
			continue
		}

		next := e.evaluateRouting(sc, outcome)
		record.Next = next
		report.Records = append(report.Records, record)
		current = next
	}

	span.SetStatus(codes.Ok, "success")
	return e.finish(report, startTime), nil
}

func (e *Executor) finish(report *RunReport, startTime time.Time) *RunReport {
	report.DurationMS = int(time.Since(startTime).Milliseconds())
	return report
}

func (e *Executor) runStage(ctx context.Context, sc *config.StageConfig, st *state.EmailState, requestID string) (ProcessingRecord, *stages.Outcome, error) {
	stage := e.registry[sc.Name]
	startTime := time.Now()

	ctx, span := tracer.Start(ctx, "stage.run",
		trace.WithAttributes(
			attribute.String("mailmind.stage.name", sc.Name),
			attribute.String("mailmind.request.id", requestID),
		))
	defer span.End()

	e.publish(ctx, &eventbus.StageStarted{Stage: sc.Name, RequestID: requestID, Pipeline: e.cfg.Name})
	e.logger.Info(fmt.Sprintf("%s_started", sc.Name))

	outcome, err := stage.Run(ctx, st)
	durationMS := int(time.Since(startTime).Milliseconds())

	record := ProcessingRecord{
		Stage:       sc.Name,
		StartedAt:   startTime.UTC(),
		CompletedAt: time.Now().UTC(),
		DurationMS:  durationMS,
	}
	if outcome != nil {
		record.LLMCalls = outcome.LLMCalls
		record.RawReply = outcome.RawReply
	}

	switch {
	case err != nil:
		record.Status = "error"
		errStr := err.Error()
		record.Error = &errStr
		observability.RecordStageExecution(sc.Name, "error", time.Since(startTime))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error(fmt.Sprintf("%s_error", sc.Name), "error", errStr, "duration_ms", durationMS)
	case outcome.Status == stages.StatusSkipped:
		record.Status = "skipped"
		observability.RecordStageExecution(sc.Name, "skipped", time.Since(startTime))
		span.SetStatus(codes.Ok, "skipped")
		e.logger.Warn(fmt.Sprintf("%s_skipped", sc.Name), "duration_ms", durationMS)
	default:
		record.Status = "success"
		observability.RecordStageExecution(sc.Name, "success", time.Since(startTime))
		span.SetStatus(codes.Ok, "success")
		e.logger.Info(fmt.Sprintf("%s_completed", sc.Name), "duration_ms", durationMS)
	}

	e.publish(ctx, &eventbus.StageCompleted{
		Stage:      sc.Name,
		RequestID:  requestID,
		Pipeline:   e.cfg.Name,
		Status:     record.Status,
		DurationMS: durationMS,
		Error:      record.Error,
	})
	return record, outcome, err
}

// evaluateRouting picks the next stage from the routing rules over the
// stage output, falling back to the configured default.
func (e *Executor) evaluateRouting(sc *config.StageConfig, outcome *stages.Outcome) string {
	for _, rule := range sc.RoutingRules {
		value, exists := outcome.Output[rule.Condition]
		if exists && value == rule.Value {
			e.logger.Debug(fmt.Sprintf("%s_routing", sc.Name),
				"condition", rule.Condition,
				"value", value,
				"target", rule.Target,
			)
			return rule.Target
		}
	}
	return sc.DefaultNext
}

func (e *Executor) publish(ctx context.Context, event eventbus.Message) {
	if e.events == nil {
		return
	}
	_ = e.events.Publish(ctx, event)
}
