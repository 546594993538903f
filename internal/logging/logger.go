// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, and carries a build id through
// every entry of a catalog build.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// A nil w means stderr, which keeps the build's stdout readable.
func Setup(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type buildIDKey struct{}

// WithBuildID stores a build id in ctx for FromContext.
func WithBuildID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, buildIDKey{}, id)
}

// BuildID returns the build id stored in ctx, if any.
func BuildID(ctx context.Context) string {
	id, _ := ctx.Value(buildIDKey{}).(string)
	return id
}

// FromContext returns the default logger enriched with the request id set by
// chi's RequestID middleware and the build id set by WithBuildID.
//
// Usage:
//
//	func handleRequest(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("product page", "slug", slug)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if buildID := BuildID(ctx); buildID != "" {
		logger = logger.With("build_id", buildID)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
//	buildLogger := logging.WithFields(ctx, "source_dir", dir)
//	buildLogger.Info("build started")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
