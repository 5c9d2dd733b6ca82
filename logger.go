package symgraph

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with symgraph-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithSnapshot adds a snapshot name field to the logger.
func (l *Logger) WithSnapshot(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("snapshot", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFreeze logs the result of Builder.Freeze.
func (l *Logger) LogFreeze(ctx context.Context, declarations, references, edges int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "freeze failed",
			"declarations", declarations,
			"references", references,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "table frozen",
		"declarations", declarations,
		"references", references,
		"edges", edges,
		"elapsed", elapsed,
	)
}

// LogSnapshot logs a snapshot save.
func (l *Logger) LogSnapshot(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"snapshot", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"snapshot", name,
		"bytes", bytes,
	)
}

// LogLoad logs a snapshot load.
func (l *Logger) LogLoad(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"snapshot", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot loaded",
		"snapshot", name,
		"bytes", bytes,
	)
}

// LogPublish logs a HEAD pointer update.
func (l *Logger) LogPublish(ctx context.Context, name string, err error) {
	if err != nil {
		l.WarnContext(ctx, "publish failed",
			"snapshot", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot published",
		"snapshot", name,
	)
}
