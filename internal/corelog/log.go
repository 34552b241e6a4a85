// Package corelog defines the logging seam used across the runtime core.
//
// It mirrors the small interface internal/plugins uses for plugin-facing
// logging, but backs it with log/slog so call sites never import slog
// directly and tests can swap in a no-op logger.
package corelog

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the minimal logging surface every core component depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Slog adapts a *slog.Logger to Logger.
type Slog struct {
	l *slog.Logger
}

// NewSlog wraps an existing *slog.Logger, or builds a default text handler
// writing to stderr when l is nil.
func NewSlog(l *slog.Logger) *Slog {
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Slog{l: l}
}

func (s *Slog) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *Slog) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *Slog) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// With returns a Logger enriched with the given key/value pairs.
func (s *Slog) With(args ...any) *Slog {
	return &Slog{l: s.l.With(args...)}
}

type noop struct{}

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}

// Noop returns a Logger that discards everything, used as the zero value
// default wherever a runtime component is constructed without a logger.
func Noop() Logger { return noop{} }

type ctxKey struct{}

// Into attaches a Logger to ctx for components deep in a call chain that
// only have access to a context.Context (e.g. evaluator/action handlers).
func Into(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From retrieves a Logger previously attached with Into, or Noop().
func From(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return Noop()
}
