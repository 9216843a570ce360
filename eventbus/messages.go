// Package eventbus provides the in-process event bus for the assistant.
//
// Events are fire-and-forget and fan out to all subscribers. The pipeline
// executor and the assistant facade publish; subscribers (telemetry, log
// sinks, UIs) attach at wiring time.
package eventbus

import (
	"reflect"
)

// MessageCategoryEvent is the routing category for fire-and-forget events.
const MessageCategoryEvent = "event"

// Message is the protocol for all bus messages.
type Message interface {
	// Category returns the message category.
	Category() string
}

// MessageType returns the registration key for a message: its concrete
// type name.
func MessageType(m Message) string {
	t := reflect.TypeOf(m)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// =============================================================================
// STAGE LIFECYCLE EVENTS
// =============================================================================

// StageStarted is emitted when a pipeline stage begins.
type StageStarted struct {
	Stage     string `json:"stage"`
	RequestID string `json:"request_id"`
	Pipeline  string `json:"pipeline"`
}

// Category implements the Message interface.
func (m *StageStarted) Category() string { return MessageCategoryEvent }

// StageCompleted is emitted when a pipeline stage finishes.
type StageCompleted struct {
	Stage      string  `json:"stage"`
	RequestID  string  `json:"request_id"`
	Pipeline   string  `json:"pipeline"`
	Status     string  `json:"status"` // "success", "skipped", "error"
	DurationMS int     `json:"duration_ms"`
	Error      *string `json:"error,omitempty"`
}

// Category implements the Message interface.
func (m *StageCompleted) Category() string { return MessageCategoryEvent }

// =============================================================================
// TURN EVENTS
// =============================================================================

// TurnCompleted is emitted when a full assistant turn finishes.
type TurnCompleted struct {
	RequestID  string `json:"request_id"`
	Pipeline   string `json:"pipeline"`
	Task       string `json:"task"`
	LLMCalls   int    `json:"llm_calls"`
	DurationMS int    `json:"duration_ms"`
}

// Category implements the Message interface.
func (m *TurnCompleted) Category() string { return MessageCategoryEvent }

// =============================================================================
// BOOKKEEPING EVENTS
// =============================================================================

// FollowUpCompleted is emitted when a follow-up (or one of its items) is
// marked complete.
type FollowUpCompleted struct {
	ThreadID   string `json:"thread_id"`
	FollowUpID string `json:"follow_up_id,omitempty"` // empty for whole-record completion
}

// Category implements the Message interface.
func (m *FollowUpCompleted) Category() string { return MessageCategoryEvent }

// PriorityChanged is emitted when a thread's priority is explicitly
// updated through the facade.
type PriorityChanged struct {
	ThreadID string `json:"thread_id"`
	Priority string `json:"priority"`
}

// Category implements the Message interface.
func (m *PriorityChanged) Category() string { return MessageCategoryEvent }
