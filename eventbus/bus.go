package eventbus

import (
	"context"
	"sync"
)

// HandlerFunc processes a published message.
type HandlerFunc func(ctx context.Context, message Message) error

// Middleware intercepts messages before and after handling, for
// cross-cutting concerns such as logging and telemetry.
type Middleware interface {
	// Before is called before a message is dispatched.
	// Returns the (possibly modified) message, or nil to abort dispatch.
	Before(ctx context.Context, message Message) (Message, error)

	// After is called after all subscribers ran, with the first
	// subscriber error if any.
	After(ctx context.Context, message Message, err error)
}

// Bus is a thread-safe in-memory event bus for single-process deployments.
//
// Usage:
//
//	bus := New()
//	bus.Subscribe("StageCompleted", telemetryHandler)
//	bus.Publish(ctx, &StageCompleted{...})
type Bus struct {
	subscribers map[string][]HandlerFunc
	middleware  []Middleware
	mu          sync.RWMutex
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string][]HandlerFunc),
	}
}

// Subscribe registers a handler for a message type. Multiple handlers per
// type fan out on publish.
func (b *Bus) Subscribe(messageType string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[messageType] = append(b.subscribers[messageType], handler)
}

// Use appends a middleware to the chain.
func (b *Bus) Use(m Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middleware = append(b.middleware, m)
}

// Publish dispatches an event to all subscribers of its type. Subscriber
// errors do not stop other subscribers; the first error is reported to
// the middleware chain and returned.
func (b *Bus) Publish(ctx context.Context, event Message) error {
	messageType := MessageType(event)

	b.mu.RLock()
	middleware := make([]Middleware, len(b.middleware))
	copy(middleware, b.middleware)
	handlers := make([]HandlerFunc, len(b.subscribers[messageType]))
	copy(handlers, b.subscribers[messageType])
	b.mu.RUnlock()

	processed := event
	for _, m := range middleware {
		var err error
		processed, err = m.Before(ctx, processed)
		if err != nil {
			return err
		}
		if processed == nil {
			return nil
		}
	}

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, processed); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for i := len(middleware) - 1; i >= 0; i-- {
		middleware[i].After(ctx, processed, firstErr)
	}
	return firstErr
}

// SubscriberCount returns the number of handlers for a message type.
func (b *Bus) SubscriberCount(messageType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[messageType])
}
