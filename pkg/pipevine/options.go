package pipevine

import (
	"context"
	"log/slog"

	"github.com/pipevine/pipevine/pkg/pipevine/journal"
	"github.com/pipevine/pipevine/pkg/pipevine/observability"
)

// DefaultHighWaterMark is the default buffer threshold for stages and
// pipelines: bytes in byte mode, chunks in object mode.
const DefaultHighWaterMark = 16384

// config holds construction-time settings shared by Duplex and
// Pipeline. The halfOpen, observability, and journal fields only apply
// to Pipeline; Duplex ignores them.
type config struct {
	name               string
	highWaterMark      int
	halfOpen           bool
	readableObjectMode bool
	writableObjectMode bool

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	journal *journal.Journal
	ctx     context.Context
}

func defaultConfig() config {
	return config{
		highWaterMark: DefaultHighWaterMark,
		halfOpen:      true,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
		ctx:           context.Background(),
	}
}

// Option configures a Duplex or a Pipeline at construction.
type Option func(*config)

// WithName sets a diagnostic name, surfaced in StageError tags,
// structured logs, and journal entries.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithHighWaterMark sets the buffer threshold above which Write
// reports backpressure. Default: DefaultHighWaterMark.
// Non-positive values are ignored.
func WithHighWaterMark(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.highWaterMark = n
		}
	}
}

// WithHalfOpen controls whether the composite's read side ending
// leaves its write side open. Default: true. With half-open disabled,
// a pipeline whose output reaches end-of-stream automatically ends its
// input side too.
//
// Only a Pipeline consults this option: its read side can end ahead of
// its input when the tail stage ends or is spliced away, whereas a
// standalone Duplex's read side cannot end before its input has.
func WithHalfOpen(halfOpen bool) Option {
	return func(c *config) {
		c.halfOpen = halfOpen
	}
}

// WithObjectMode makes both directions treat chunks as opaque values
// counting one buffer unit each, instead of as []byte/string measured
// in bytes.
func WithObjectMode() Option {
	return func(c *config) {
		c.readableObjectMode = true
		c.writableObjectMode = true
	}
}

// WithReadableObjectMode enables object-mode accounting for the read
// side only.
func WithReadableObjectMode() Option {
	return func(c *config) {
		c.readableObjectMode = true
	}
}

// WithWritableObjectMode enables object-mode accounting for the write
// side only.
func WithWritableObjectMode() Option {
	return func(c *config) {
		c.writableObjectMode = true
	}
}

// WithLogger enables structured logging of splices, stage errors, and
// end-of-stream on a Pipeline. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics on a Pipeline. The
// recorder uses the global OTel meter provider; configure the provider
// before constructing the pipeline.
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans for splice and end-of-input
// handshakes on a Pipeline. Uses the global OTel tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *config) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithJournal records the pipeline's topology mutations, tagged stage
// errors, and end-of-stream to the given journal. A nil journal
// disables recording. Journal write failures are logged, never fatal.
func WithJournal(j *journal.Journal) Option {
	return func(c *config) {
		c.journal = j
	}
}

// WithContext sets the context passed to metrics and span recording.
// Default: context.Background().
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
