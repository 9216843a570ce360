// Package observability provides Prometheus metrics instrumentation for
// the assistant engine.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// TURN METRICS
// =============================================================================

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailmind_turns_total",
			Help: "Total number of assistant turns",
		},
		[]string{"pipeline", "status"}, // status: success, error
	)

	turnDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailmind_turn_duration_seconds",
			Help:    "Assistant turn duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"pipeline"},
	)
)

// =============================================================================
// STAGE METRICS
// =============================================================================

var (
	stageExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailmind_stage_executions_total",
			Help: "Total number of stage executions",
		},
		[]string{"stage", "status"}, // status: success, skipped, error
	)

	stageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailmind_stage_duration_seconds",
			Help:    "Stage execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"stage"},
	)
)

// =============================================================================
// LLM METRICS
// =============================================================================

var (
	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailmind_llm_calls_total",
			Help: "Total number of generation provider calls",
		},
		[]string{"model", "status"}, // status: success, error
	)

	llmDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailmind_llm_duration_seconds",
			Help:    "Generation provider call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)
)

// RecordTurn records one assistant turn.
func RecordTurn(pipeline, status string, duration time.Duration) {
	turnsTotal.WithLabelValues(pipeline, status).Inc()
	turnDurationSeconds.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// RecordStageExecution records one stage execution.
func RecordStageExecution(stage, status string, duration time.Duration) {
	stageExecutionsTotal.WithLabelValues(stage, status).Inc()
	stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordLLMCall records one generation provider call.
func RecordLLMCall(model, status string, duration time.Duration) {
	llmCallsTotal.WithLabelValues(model, status).Inc()
	llmDurationSeconds.WithLabelValues(model).Observe(duration.Seconds())
}
