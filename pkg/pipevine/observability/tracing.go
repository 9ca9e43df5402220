package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the pipevine tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("pipevine")

// SpanManager handles trace span lifecycle for pipeline operations.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when
// disabled.
type SpanManager interface {
	// StartSpliceSpan starts a span for a topology mutation.
	StartSpliceSpan(ctx context.Context, index, removed, added int) (context.Context, trace.Span)

	// StartEndSpan starts a span for the end-of-input handshake.
	StartEndSpan(ctx context.Context) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartSpliceSpan starts a span for a topology mutation.
func (m *otelSpanManager) StartSpliceSpan(ctx context.Context, index, removed, added int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "pipevine.splice",
		trace.WithAttributes(
			attribute.Int("splice.index", index),
			attribute.Int("splice.removed", removed),
			attribute.Int("splice.added", added),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEndSpan starts a span for the end-of-input handshake.
func (m *otelSpanManager) StartEndSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "pipevine.end",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
