package logger

import (
	"context"
)

// Logger is the structured logging contract used across the storage service.
// Log methods take a message followed by alternating key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a child logger that adds the given key-value pairs to every entry.
	With(args ...any) Logger

	// WithContext returns a child logger carrying the request ID stored in ctx, if any.
	WithContext(ctx context.Context) Logger
}

type requestIDKey struct{}

// ContextWithRequestID stores a request ID that WithContext will attach to log entries.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (n nopLogger) With(...any) Logger                 { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
