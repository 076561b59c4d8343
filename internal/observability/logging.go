package observability

import (
	"context"
	"log/slog"
)

// LogContext holds structured logging context information for one
// normalization pass.
type LogContext struct {
	PassID    string
	OutputDir string
	Layout    string
	Stage     string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithPassID adds a normalization pass ID to the context.
func WithPassID(ctx context.Context, passID string) context.Context {
	lc := extractLogContext(ctx)
	lc.PassID = passID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithOutputDir adds the directory being normalized to the context.
func WithOutputDir(ctx context.Context, dir string) context.Context {
	lc := extractLogContext(ctx)
	lc.OutputDir = dir
	return context.WithValue(ctx, logContextKey, lc)
}

// WithLayout adds the detected output layout to the context.
func WithLayout(ctx context.Context, layout string) context.Context {
	lc := extractLogContext(ctx)
	lc.Layout = layout
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// extractLogContext retrieves or creates a LogContext from the context.
func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// getLogAttrs returns slog attributes from the context's LogContext.
func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.PassID != "" {
		attrs = append(attrs, slog.String("pass.id", lc.PassID))
	}
	if lc.OutputDir != "" {
		attrs = append(attrs, slog.String("output.dir", lc.OutputDir))
	}
	if lc.Layout != "" {
		attrs = append(attrs, slog.String("layout", lc.Layout))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}

	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelInfo, msg, allAttrs...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelWarn, msg, allAttrs...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelError, msg, allAttrs...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelDebug, msg, allAttrs...)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
