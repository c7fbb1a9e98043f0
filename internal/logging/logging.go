// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// SourceKey is the context key for the file being processed.
	SourceKey ContextKey = "source"
	// RequestIDKey is the context key for the HTTP request ID.
	RequestIDKey ContextKey = "request_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Text on stderr until the CLI reads its configuration.
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// ParseLevel returns the level named s ("debug", "info", "warn",
// "error"), ignoring case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, apperrors.NewType(s, "log level")
	}
}

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseFormat returns the format named s ("json" or "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "", "text":
		return FormatText, nil
	default:
		return FormatText, apperrors.NewType(s, "log format")
	}
}

// InitLogger initializes the global logger with the specified level and
// format, writing to stderr. Standard output is kept for command results.
func InitLogger(level Level, format Format) {
	InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer, level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// WithSource records the file being processed in the context.
func WithSource(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, SourceKey, path)
}

// GetSource retrieves the file being processed from the context.
func GetSource(ctx context.Context) string {
	if path, ok := ctx.Value(SourceKey).(string); ok {
		return path
	}
	return ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if id := GetRequestID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	if path := GetSource(ctx); path != "" {
		logger = logger.With("source", path)
	}
	return logger
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// SnapshotLoaded logs a transcription read from a snapshot file.
func SnapshotLoaded(ctx context.Context, name string, tiers int, duration time.Duration, args ...any) {
	allArgs := []any{
		"transcription", name,
		"tiers", tiers,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("snapshot_loaded", allArgs...)
}

// CheckResult logs the compatibility of a transcription with a format.
func CheckResult(ctx context.Context, format, lossClass string, lost int, args ...any) {
	allArgs := []any{
		"format", format,
		"loss_class", lossClass,
		"lost_elements", lost,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("check_result", allArgs...)
}

// CatalogEvent logs catalog operations.
func CatalogEvent(event, path string, args ...any) {
	allArgs := []any{
		"event", event,
		"path", path,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("catalog_event", allArgs...)
}

// HTTPRequest logs a served HTTP request.
func HTTPRequest(ctx context.Context, method, path, remoteAddr string, status int, duration time.Duration) {
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	} else if status >= 400 {
		level = slog.LevelWarn
	}
	LoggerFromContext(ctx).Log(ctx, level, "http_request",
		"method", method,
		"path", path,
		"remote_addr", remoteAddr,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}
