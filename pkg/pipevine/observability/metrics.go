package observability

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pipeline flow and topology metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when
// disabled.
type MetricsRecorder interface {
	// RecordWrite records units (bytes or chunks) accepted on the
	// pipeline's write side.
	RecordWrite(ctx context.Context, units int64)

	// RecordRead records units handed to the pipeline's consumer.
	RecordRead(ctx context.Context, units int64)

	// RecordSplice records a topology mutation.
	RecordSplice(ctx context.Context, added, removed int)

	// RecordStageError records an error raised by a member stage.
	RecordStageError(ctx context.Context, stage string)

	// RecordBufferDepth records the composite buffer depth in chunks.
	RecordBufferDepth(ctx context.Context, depth int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	unitsWritten metric.Int64Counter
	unitsRead    metric.Int64Counter
	splices      metric.Int64Counter
	stageErrors  metric.Int64Counter
	bufferDepth  metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("pipevine")

	unitsWritten, err := meter.Int64Counter("pipevine.units.written",
		metric.WithDescription("Units accepted on the pipeline write side"),
	)
	if err != nil {
		return nil, err
	}

	unitsRead, err := meter.Int64Counter("pipevine.units.read",
		metric.WithDescription("Units delivered to the pipeline consumer"),
	)
	if err != nil {
		return nil, err
	}

	splices, err := meter.Int64Counter("pipevine.splices",
		metric.WithDescription("Number of topology mutations"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter("pipevine.stage.errors",
		metric.WithDescription("Number of errors raised by member stages"),
	)
	if err != nil {
		return nil, err
	}

	bufferDepth, err := meter.Int64Histogram("pipevine.buffer.depth",
		metric.WithDescription("Composite buffer depth in chunks"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		unitsWritten: unitsWritten,
		unitsRead:    unitsRead,
		splices:      splices,
		stageErrors:  stageErrors,
		bufferDepth:  bufferDepth,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordWrite records units accepted on the write side.
func (m *otelMetrics) RecordWrite(ctx context.Context, units int64) {
	m.unitsWritten.Add(ctx, units)
}

// RecordRead records units delivered to the consumer.
func (m *otelMetrics) RecordRead(ctx context.Context, units int64) {
	m.unitsRead.Add(ctx, units)
}

// RecordSplice records a topology mutation.
func (m *otelMetrics) RecordSplice(ctx context.Context, added, removed int) {
	m.splices.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("added", added),
		attribute.Int("removed", removed),
	))
}

// RecordStageError records a member stage error.
func (m *otelMetrics) RecordStageError(ctx context.Context, stage string) {
	m.stageErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordBufferDepth records the composite buffer depth.
func (m *otelMetrics) RecordBufferDepth(ctx context.Context, depth int64) {
	m.bufferDepth.Record(ctx, depth)
}
