package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestBackendsWriteStructuredJSON(t *testing.T) {
	for _, backend := range []string{BackendSlog, BackendLogrus} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: LevelInfo, Format: "json", Backend: backend, Output: &buf})

			ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-1")
			log.WithContext(ctx).With(String("metric", "mood")).Info("computed statistics", Int("points", 30))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "computed statistics", entry["msg"])
			assert.Equal(t, "req-1", entry["request_id"])
			assert.Equal(t, "user-1", entry["user_id"])
			assert.Equal(t, "mood", entry["metric"])
			assert.Equal(t, float64(30), entry["points"])
		})
	}
}

func TestBackendsRespectLevel(t *testing.T) {
	for _, backend := range []string{BackendSlog, BackendLogrus} {
		var buf bytes.Buffer
		log := New(Config{Level: LevelWarn, Format: "json", Backend: backend, Output: &buf})

		log.Info("hidden")
		assert.Zero(t, buf.Len(), backend)

		log.Warn("shown")
		assert.NotZero(t, buf.Len(), backend)
		assert.Equal(t, LevelWarn, log.Level())
	}
}

func TestWithRequestIDGenerates(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.Len(t, RequestIDFromContext(ctx), 36)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Backend: BackendLogrus, Output: &buf})

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestDurationIsMilliseconds(t *testing.T) {
	for _, backend := range []string{BackendSlog, BackendLogrus} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: LevelInfo, Backend: backend, Output: &buf})

			log.Info("request completed", Duration("latency", 1500*time.Microsecond))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, 1.5, entry["latency_ms"])
		})
	}
}

func TestWithRequestIDSanitizes(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantKeep bool
	}{
		{name: "plain", id: "req-123", wantKeep: true},
		{name: "padded", id: "  req-123  ", wantKeep: true},
		{name: "empty", id: ""},
		{name: "control characters", id: "req\n123"},
		{name: "inner space", id: "req 123"},
		{name: "too long", id: strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequestIDFromContext(WithRequestID(context.Background(), tt.id))
			if tt.wantKeep {
				assert.Equal(t, strings.TrimSpace(tt.id), got)
				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}

func TestWithMetrics(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf})

	ctx := WithMetrics(WithLogger(context.Background(), l), "mood", "", "sleep_hours")
	assert.Equal(t, "mood,sleep_hours", MetricsFromContext(ctx))

	Ctx(ctx).Info("correlation computed")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mood,sleep_hours", entry["metrics"])

	bare := context.Background()
	assert.Equal(t, bare, WithMetrics(bare))
}
