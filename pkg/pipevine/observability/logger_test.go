package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds pipeline_id and pipeline", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		enriched := EnrichLogger(logger, "pl-123", "etl")
		enriched.Info("test message")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "pl-123", record["pipeline_id"])
		assert.Equal(t, "etl", record["pipeline"])
		assert.Equal(t, "test message", record["msg"])
	})

	t.Run("empty name is omitted", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		EnrichLogger(logger, "pl-123", "").Info("test")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "pl-123", record["pipeline_id"])
		_, hasName := record["pipeline"]
		assert.False(t, hasName)
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "pl-123", "etl"))
	})
}

func TestLogSplice(t *testing.T) {
	t.Run("logs mutation shape at DEBUG level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogSplice(logger, "pl-456", 1, 2, 3, 4)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "DEBUG", record["level"])
		assert.Equal(t, "pipeline spliced", record["msg"])
		assert.Equal(t, "pl-456", record["pipeline_id"])
		assert.Equal(t, float64(1), record["index"]) // JSON decodes ints as float64
		assert.Equal(t, float64(2), record["removed"])
		assert.Equal(t, float64(3), record["added"])
		assert.Equal(t, float64(4), record["length"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogSplice(nil, "pl-123", 0, 0, 1, 1)
		})
	})
}

func TestLogStageError(t *testing.T) {
	t.Run("logs at ERROR level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)
		testErr := errors.New("checksum mismatch")

		LogStageError(logger, "pl-err", "verify", testErr)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "stage error", record["msg"])
		assert.Equal(t, "pl-err", record["pipeline_id"])
		assert.Equal(t, "verify", record["stage"])
		assert.Equal(t, "checksum mismatch", record["error"])
	})

	t.Run("nil error logs empty string", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogStageError(logger, "pl", "stage", nil)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "", record["error"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogStageError(nil, "pl", "stage", errors.New("err"))
		})
	})
}

func TestLogEndOfStream(t *testing.T) {
	t.Run("logs at INFO level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		LogEndOfStream(logger, "pl-789")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "pipeline ended", record["msg"])
		assert.Equal(t, "pl-789", record["pipeline_id"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogEndOfStream(nil, "pl-123")
		})
	})
}

func TestLogJournalError(t *testing.T) {
	t.Run("logs at WARN level", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)
		testErr := errors.New("disk full")

		LogJournalError(logger, "pl-j", testErr)

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "WARN", record["level"])
		assert.Equal(t, "journal write failed", record["msg"])
		assert.Equal(t, "pl-j", record["pipeline_id"])
		assert.Equal(t, "disk full", record["error"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogJournalError(nil, "pl", errors.New("err"))
		})
	})
}
