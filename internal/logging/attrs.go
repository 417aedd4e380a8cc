package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent names the subsystem that emitted the line.
	FieldComponent = "component"
	// FieldSessionID identifies the scan session (one camera mount).
	FieldSessionID = "session_id"
	// FieldEventType is a stable machine-readable event name.
	FieldEventType = "event_type"
	// FieldImpact describes what the user loses when a warning fires.
	FieldImpact = "impact"
	// FieldErrorHint suggests how to fix the condition behind a warning.
	FieldErrorHint = "error_hint"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
