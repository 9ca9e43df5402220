package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordWrite does nothing.
func (NoopMetrics) RecordWrite(_ context.Context, _ int64) {}

// RecordRead does nothing.
func (NoopMetrics) RecordRead(_ context.Context, _ int64) {}

// RecordSplice does nothing.
func (NoopMetrics) RecordSplice(_ context.Context, _, _ int) {}

// RecordStageError does nothing.
func (NoopMetrics) RecordStageError(_ context.Context, _ string) {}

// RecordBufferDepth does nothing.
func (NoopMetrics) RecordBufferDepth(_ context.Context, _ int64) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartSpliceSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartSpliceSpan(ctx context.Context, _, _, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartEndSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartEndSpan(ctx context.Context) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
