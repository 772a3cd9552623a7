package logging

import (
	"context"
	"log/slog"
)

const redactedPlaceholder = "[redacted]"

// Logger is what the registry and the wasm engine log through.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New wraps l. A nil l logs through slog.Default().
func New(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &contextLogger{l: l}
}

// Discard drops every record. Tests use it to keep engine diagnostics out
// of the output.
func Discard() Logger {
	return &contextLogger{l: slog.New(slog.DiscardHandler)}
}

// OrDefault returns l, or New(nil) when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return New(nil)
	}
	return l
}

// contextLogger forwards to the *Context variants so handlers can pick up
// request-scoped values.
type contextLogger struct {
	l *slog.Logger
}

func (c *contextLogger) Debug(ctx context.Context, msg string, args ...any) {
	c.l.DebugContext(ctx, msg, args...)
}

func (c *contextLogger) Info(ctx context.Context, msg string, args ...any) {
	c.l.InfoContext(ctx, msg, args...)
}

func (c *contextLogger) Warn(ctx context.Context, msg string, args ...any) {
	c.l.WarnContext(ctx, msg, args...)
}

func (c *contextLogger) Error(ctx context.Context, msg string, args ...any) {
	c.l.ErrorContext(ctx, msg, args...)
}

func (c *contextLogger) With(args ...any) Logger {
	return &contextLogger{l: c.l.With(args...)}
}

// Redacted records key with a fixed placeholder instead of its value. Scalars,
// nonces and raw signatures are only ever logged this way.
func Redacted(key string) slog.Attr {
	return slog.String(key, redactedPlaceholder)
}

// Placeholder is the value Redacted attributes carry.
func Placeholder() string {
	return redactedPlaceholder
}
