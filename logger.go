package chromad

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger with chromad-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSegment adds a segment ID field to the logger.
func (l *Logger) WithSegment(id uuid.UUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("segment", id),
	}
}

// WithCollection adds a collection ID field to the logger.
func (l *Logger) WithCollection(id uuid.UUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("collection", id),
	}
}

// WithKey adds a storage key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogRegister logs a segment registration.
func (l *Logger) LogRegister(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment registration failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "segments registered",
			"count", count,
		)
	}
}

// LogUpdate logs a segment update.
func (l *Logger) LogUpdate(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment update failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "segments updated",
			"count", count,
		)
	}
}

// LogPull logs a segment file pull.
func (l *Logger) LogPull(ctx context.Context, id uuid.UUID, files int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment pull failed",
			"segment", id,
			"files", files,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "segment pulled",
			"segment", id,
			"files", files,
		)
	}
}

// LogPush logs a segment file push.
func (l *Logger) LogPush(ctx context.Context, id uuid.UUID, files int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment push failed",
			"segment", id,
			"files", files,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "segment pushed",
			"segment", id,
			"files", files,
		)
	}
}

// LogCheckpoint logs a catalog checkpoint.
func (l *Logger) LogCheckpoint(ctx context.Context, key string, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"key", key,
			"segments", segments,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint saved",
			"key", key,
			"segments", segments,
		)
	}
}

// LogRestore logs a catalog restore.
func (l *Logger) LogRestore(ctx context.Context, key string, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"key", key,
			"segments", segments,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "restore completed",
			"key", key,
			"segments", segments,
		)
	}
}
