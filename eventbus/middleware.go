package eventbus

import (
	"context"
)

// Logger is the interface for logging.
type Logger interface {
	Info(msg string, fields ...any)
	Debug(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// LoggingMiddleware logs all bus traffic.
type LoggingMiddleware struct {
	logger Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware.
func NewLoggingMiddleware(logger Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Before logs message receipt.
func (m *LoggingMiddleware) Before(ctx context.Context, message Message) (Message, error) {
	m.logger.Debug("event_published", "type", MessageType(message), "category", message.Category())
	return message, nil
}

// After logs dispatch completion.
func (m *LoggingMiddleware) After(ctx context.Context, message Message, err error) {
	if err != nil {
		m.logger.Warn("event_subscriber_failed", "type", MessageType(message), "error", err.Error())
	}
}
