package log

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used for tronkit spans.
const TracerName = "github.com/tronkit/tronkit"

type contextKey struct{}

var loggerContextKey = contextKey{}

// SetContextLogger stores lg in ctx. When ctx carries a valid span the logger
// is wrapped in a SpanLogger. A nil logger stores a NoopLogger.
func SetContextLogger(ctx context.Context, lg Logger) context.Context {
	if lg == nil {
		lg = NewNoopLogger()
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		lg = NewSpanLogger(lg, NewOtelSpanEventRecorder(span))
	}

	return context.WithValue(ctx, loggerContextKey, lg)
}

// FromContext returns the logger stored in ctx, or a NoopLogger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return l
	}
	return NewNoopLogger()
}

// StartSpan opens a span on the global tracer provider and rebinds lg to it.
// Callers must end the returned span.
func StartSpan(ctx context.Context, lg Logger, name string, keysAndValues ...any) (context.Context, Logger, trace.Span) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(kvToOtelAttributes(Redact(keysAndValues)...)...))
	ctx = SetContextLogger(ctx, lg)
	return ctx, FromContext(ctx), span
}
