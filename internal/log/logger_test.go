package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsms/gsms/internal/errors"
)

func bufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{
		Level:       level,
		Format:      format,
		Output:      &buf,
		ServiceName: "gsms",
	}), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"default config", DefaultConfig()},
		{"development config", DevelopmentConfig()},
		{"custom json", Config{Level: LevelDebug, Format: FormatJSON, Output: os.Stdout}},
		{"custom text", Config{Level: LevelWarn, Format: FormatText, Output: os.Stderr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			require.NotNil(t, logger)
			require.NotNil(t, logger.Slog())
			assert.Equal(t, tt.config.Level, logger.Config().Level)
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := bufferLogger(LevelWarn, FormatJSON)

	logger.Debug("debug message")
	logger.Info("info message")
	assert.Empty(t, buf.String())

	logger.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestJSONFormatOutput(t *testing.T) {
	logger, buf := bufferLogger(LevelInfo, FormatJSON)

	logger.Info("session restored", "user_id", 7)

	entry := decodeLine(t, buf)
	assert.Equal(t, "session restored", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(7), entry["user_id"])
	assert.Equal(t, "gsms", entry["service"])
}

func TestTextFormatOutput(t *testing.T) {
	logger, buf := bufferLogger(LevelInfo, FormatText)

	logger.Info("navigation allowed", "path", "/projects")

	out := buf.String()
	assert.Contains(t, out, "msg=\"navigation allowed\"")
	assert.Contains(t, out, "path=/projects")
}

func TestWithAndGroup(t *testing.T) {
	logger, buf := bufferLogger(LevelInfo, FormatJSON)

	logger.With("component", "session").WithGroup("fetch").Info("done", "count", 3)

	entry := decodeLine(t, buf)
	assert.Equal(t, "session", entry["component"])
	group, ok := entry["fetch"].(map[string]any)
	require.True(t, ok, "expected grouped attributes")
	assert.Equal(t, float64(3), group["count"])
}

func TestWithError(t *testing.T) {
	t.Run("nil error returns same logger", func(t *testing.T) {
		logger, _ := bufferLogger(LevelInfo, FormatJSON)
		assert.Same(t, logger, logger.WithError(nil))
	})

	t.Run("plain error", func(t *testing.T) {
		logger, buf := bufferLogger(LevelInfo, FormatJSON)
		logger.WithError(fmt.Errorf("boom")).Info("failed")

		entry := decodeLine(t, buf)
		assert.Equal(t, "boom", entry["error"])
		assert.NotContains(t, entry, "error_code")
	})

	t.Run("wrapped GSMSError", func(t *testing.T) {
		logger, buf := bufferLogger(LevelInfo, FormatJSON)
		gErr := errors.NewNotLoggedInError()
		logger.WithError(fmt.Errorf("listing projects: %w", gErr)).Info("failed")

		entry := decodeLine(t, buf)
		assert.Equal(t, "not logged in", entry["error"])
		assert.Equal(t, string(errors.ErrCodeNotLoggedIn), entry["error_code"])
		assert.NotEmpty(t, entry["suggestions"])
	})
}

func TestLogError(t *testing.T) {
	t.Run("GSMSError with cause and docs", func(t *testing.T) {
		logger, buf := bufferLogger(LevelInfo, FormatJSON)
		err := errors.Wrap(errors.ErrCodeAPINetwork, "request failed", fmt.Errorf("dial tcp")).
			WithDocs("https://example.com/docs")

		logger.LogError(err)

		entry := decodeLine(t, buf)
		assert.Equal(t, "operation failed", entry["msg"])
		assert.Equal(t, "request failed", entry["error_message"])
		assert.Equal(t, "API-007", entry["error_code"])
		assert.Equal(t, "dial tcp", entry["cause"])
		assert.Equal(t, "https://example.com/docs", entry["docs_url"])
	})

	t.Run("regular error", func(t *testing.T) {
		logger, buf := bufferLogger(LevelInfo, FormatJSON)
		logger.LogErrorContext(context.Background(), fmt.Errorf("plain failure"))

		entry := decodeLine(t, buf)
		assert.Equal(t, "plain failure", entry["error_message"])
	})

	t.Run("nil error logs nothing", func(t *testing.T) {
		logger, buf := bufferLogger(LevelInfo, FormatJSON)
		logger.LogError(nil)
		assert.Empty(t, buf.String())
	})
}

func TestContextMethods(t *testing.T) {
	logger, buf := bufferLogger(LevelDebug, FormatJSON)
	ctx := context.Background()

	logger.DebugContext(ctx, "d")
	logger.InfoContext(ctx, "i")
	logger.WarnContext(ctx, "w")
	logger.ErrorContext(ctx, "e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
}

func TestEnabled(t *testing.T) {
	logger, _ := bufferLogger(LevelWarn, FormatJSON)
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelWarn))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	assert.NoError(t, logger.Close())
}
