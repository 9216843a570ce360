// Mailmind demo binary.
//
// Runs one assistant turn against a scripted generation provider and
// prints the resulting reply, pending follow-ups, thread summary, and
// weekly analytics. Optionally serves Prometheus metrics and exports
// OTLP traces.
//
// Usage:
//
//	go run ./cmd/assistant
//	go run ./cmd/assistant -metrics-addr :9090 -otlp-endpoint localhost:4317
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jeeves-cluster-organization/mailmind/engine/assistant"
	"github.com/jeeves-cluster-organization/mailmind/engine/observability"
	"github.com/jeeves-cluster-organization/mailmind/engine/stages"
	"github.com/jeeves-cluster-organization/mailmind/engine/state"
	"github.com/jeeves-cluster-organization/mailmind/eventbus"
)

// zapLogger adapts a zap sugared logger to the engine Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Info(msg string, fields ...any)  { l.s.Infow(msg, fields...) }
func (l *zapLogger) Debug(msg string, fields ...any) { l.s.Debugw(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...any)  { l.s.Warnw(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...any) { l.s.Errorw(msg, fields...) }
func (l *zapLogger) Bind(fields ...any) stages.Logger {
	return &zapLogger{s: l.s.With(fields...)}
}

// scriptedProvider returns canned replies per model role, standing in for
// the external generation service.
type scriptedProvider struct{}

func (scriptedProvider) Generate(ctx context.Context, model string, prompt string, options map[string]any) (string, error) {
	switch model {
	case "router":
		return "analyze_email", nil
	case "analysis":
		return `{"thread_id": "thread_1", "topics": ["project update", "meeting"], "sentiment": "positive"}`, nil
	case "analyzer":
		return `{
			"thread_id": "thread_1",
			"topics": ["project update", "meeting", "scheduling"],
			"sentiment": "positive",
			"priority": "high",
			"action_items": ["Propose meeting slots for next week"],
			"follow_ups": ["Confirm the meeting time with John"],
			"suggested_templates": {"meeting_confirmation": "Hi {name}, confirming our meeting on {date}."}
		}`, nil
	case "responder":
		return strings.TrimSpace(`Subject: Re: Project Update Meeting

Hi John,

Happy to schedule the project update meeting. Would Tuesday or Wednesday
afternoon next week work for you? I'll send a calendar invite once you
confirm.

Best regards`), nil
	default:
		return "Draft content for: " + model, nil
	}
}

func main() {
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics address (empty disables)")
	otlpEndpoint := flag.String("otlp-endpoint", "", "OTLP trace collector endpoint (empty disables)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zcfg := zap.NewProductionConfig()
	if *debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	zl, err := zcfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := &zapLogger{s: zl.Sugar()}

	if *otlpEndpoint != "" {
		shutdown, err := observability.InitTracer("mailmind", *otlpEndpoint)
		if err != nil {
			logger.Error("tracer_init_failed", "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics_listening", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics_server_failed", "error", err.Error())
			}
		}()
	}

	bus := eventbus.New()
	bus.Use(eventbus.NewLoggingMiddleware(logger))
	bus.Subscribe("StageCompleted", func(ctx context.Context, m eventbus.Message) error {
		event := m.(*eventbus.StageCompleted)
		logger.Info("stage_event", "stage", event.Stage, "status", event.Status, "duration_ms", event.DurationMS)
		return nil
	})

	asst, err := assistant.New(scriptedProvider{},
		assistant.WithLogger(logger),
		assistant.WithEvents(bus),
	)
	if err != nil {
		logger.Error("assistant_init_failed", "error", err.Error())
		os.Exit(1)
	}

	emailContext := &state.EmailContext{
		Threads: map[string]*state.Thread{
			"thread_1": {
				Subject: "Project Update Meeting",
				Messages: []state.ThreadMessage{
					{
						From:      "john@example.com",
						Content:   "Can we schedule a project update meeting for next week?",
						Timestamp: time.Now().Add(-2 * time.Hour),
					},
				},
				Participants:    []string{"john@example.com"},
				LastInteraction: time.Now().Add(-2 * time.Hour),
			},
		},
		Contacts: map[string]*state.Contact{
			"john@example.com": {
				Name:                 "John Smith",
				Role:                 "Project Manager",
				PreviousInteractions: []string{"meeting requests", "status updates"},
			},
		},
		Tags: map[string][]string{
			"thread_1": {"project", "meeting", "high-priority"},
		},
	}

	ctx := context.Background()
	userInput := "Help me draft a response to John's meeting request. Make it professional but friendly."
	logger.Info("processing_request", "input", userInput)

	reply, err := asst.HandleRequest(ctx, userInput, emailContext)
	if err != nil {
		logger.Error("request_failed", "error", err.Error())
		os.Exit(1)
	}

	fmt.Printf("\nAssistant's response:\n%s\n", reply)
	printJSON("Pending follow-ups", asst.PendingFollowUps())

	if summary, err := asst.ThreadSummary("thread_1"); err == nil {
		printJSON("Thread summary", summary)
	}
	if analytics, err := asst.Analytics(assistant.TimeframeWeek); err == nil {
		printJSON("Weekly analytics", analytics)
	}
}

func printJSON(title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Failed to render %s: %v", title, err)
		return
	}
	fmt.Printf("\n%s:\n%s\n", title, data)
}
