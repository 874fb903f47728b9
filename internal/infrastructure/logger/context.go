package logger

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// CorrelationIDKey is the context key for the correlation ID of one inventory operation
	CorrelationIDKey contextKey = "correlation_id"
	// OperationKey is the context key for the name of the running operation
	OperationKey contextKey = "operation"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithCorrelationID tags the context and its logger with a correlation ID.
// An empty id generates a new one.
func WithCorrelationID(ctx context.Context, logger *zap.Logger, correlationID string) (context.Context, *zap.Logger) {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, CorrelationIDKey, correlationID)
	enriched := logger.With(zap.String("correlation_id", correlationID))
	return WithContext(ctx, enriched), enriched
}

// WithOperation tags the context and its logger with an operation name
func WithOperation(ctx context.Context, logger *zap.Logger, operation string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, OperationKey, operation)
	enriched := logger.With(zap.String("operation", operation))
	return WithContext(ctx, enriched), enriched
}

// GetCorrelationID retrieves the correlation ID from context
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// GetOperation retrieves the operation name from context
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(OperationKey).(string); ok {
		return op
	}
	return ""
}

// GetTraceID extracts the trace ID from the context's span, or ""
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// GetSpanID extracts the span ID from the context's span, or ""
func GetSpanID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.SpanID().String()
}

// Enrich adds trace_id and span_id from ctx to l, plus the operation and
// correlation_id when ctx carries them but not its own logger.
// A logger bound through WithOperation or WithCorrelationID already has those.
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}

	if traceID := GetTraceID(ctx); traceID != "" {
		l = l.With(
			zap.String("trace_id", traceID),
			zap.String("span_id", GetSpanID(ctx)),
		)
	}

	if _, fromCtx := ctx.Value(LoggerKey).(*zap.Logger); !fromCtx {
		if op := GetOperation(ctx); op != "" {
			l = l.With(zap.String("operation", op))
		}
		if id := GetCorrelationID(ctx); id != "" {
			l = l.With(zap.String("correlation_id", id))
		}
	}

	return l
}
