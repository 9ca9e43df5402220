// Package observability provides logging, metrics, and tracing helpers
// for pipevine pipelines.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Everything is opt-in: a nil logger disables logging, and the no-op
// recorder and span manager cost nothing when metrics or tracing are
// off.
package observability

import "log/slog"

// EnrichLogger adds pipeline identity to a logger.
// Returns a new logger with pipeline_id and, when set, pipeline fields.
func EnrichLogger(logger *slog.Logger, pipelineID, name string) *slog.Logger {
	if logger == nil {
		return nil
	}
	enriched := logger.With(slog.String("pipeline_id", pipelineID))
	if name != "" {
		enriched = enriched.With(slog.String("pipeline", name))
	}
	return enriched
}

// LogSplice logs a completed topology mutation.
func LogSplice(logger *slog.Logger, pipelineID string, index, removed, added, length int) {
	if logger == nil {
		return
	}
	logger.Debug("pipeline spliced",
		slog.String("pipeline_id", pipelineID),
		slog.Int("index", index),
		slog.Int("removed", removed),
		slog.Int("added", added),
		slog.Int("length", length),
	)
}

// LogStageError logs an error raised by a member stage.
func LogStageError(logger *slog.Logger, pipelineID, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Error("stage error",
		slog.String("pipeline_id", pipelineID),
		slog.String("stage", stage),
		slog.String("error", errString(err)),
	)
}

// LogEndOfStream logs the composite reaching end-of-stream.
func LogEndOfStream(logger *slog.Logger, pipelineID string) {
	if logger == nil {
		return
	}
	logger.Info("pipeline ended",
		slog.String("pipeline_id", pipelineID),
	)
}

// LogJournalError logs a failed journal write (non-fatal).
func LogJournalError(logger *slog.Logger, pipelineID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("pipeline_id", pipelineID),
		slog.String("error", errString(err)),
	)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
