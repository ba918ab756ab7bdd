package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: "info", Format: LogFormatText, Output: &buf})

		logger.Info("promo applied", "code", "SAVE10")

		assert.Contains(t, buf.String(), "promo applied")
		assert.Contains(t, buf.String(), "code=SAVE10")
	})

	t.Run("json format with service identity", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          "info",
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "coach-portal",
			ServiceVersion: "1.2.0",
		})

		logger.Info("subscription expired")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "subscription expired", entry["msg"])
		assert.Equal(t, "coach-portal", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("adds ids from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf}).With("component", "checkout")

		ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-123"), "req-456")
		logger.InfoContext(ctx, "checkout completed")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-123", entry[CorrelationIDKey])
		assert.Equal(t, "req-456", entry[RequestIDKey])
		assert.Equal(t, "checkout", entry["component"])
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLoggerFromEnv(t *testing.T) {
	t.Setenv("PORTAL_ENV", "production")
	t.Setenv("PORTAL_LOG_LEVEL", "debug")

	logger := LoggerFromEnv()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "upstream")
	assert.Equal(t, "upstream", CorrelationID(ctx))
	assert.NotEmpty(t, RequestID(ctx))

	fresh := NewRequestContext(context.Background(), "")
	assert.NotEmpty(t, CorrelationID(fresh))
	assert.NotEqual(t, RequestID(ctx), RequestID(fresh))
}
