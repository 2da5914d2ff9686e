package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ariachat/server/internal/utils/requestctx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewZapLogger(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := NewZapLogger(&Config{Level: "info", Format: "json", Output: buf})
		require.NoError(t, err)

		l.Info("usage recorded", zap.Int64("seconds", 45))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "usage recorded", entry["msg"])
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, float64(45), entry["seconds"])
	})

	t.Run("console output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := NewZapLogger(&Config{Level: "debug", Format: "console", Output: buf})
		require.NoError(t, err)

		l.Debug("debug message")
		assert.Contains(t, buf.String(), "debug message")
		assert.False(t, strings.HasPrefix(buf.String(), "{"))
	})

	t.Run("level filters", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := NewZapLogger(&Config{Level: "warn", Output: buf})
		require.NoError(t, err)

		l.Info("hidden")
		assert.Empty(t, buf.String())
		l.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := NewZapLogger(&Config{Level: "verbose"})
		assert.Error(t, err)
	})

	t.Run("nil config", func(t *testing.T) {
		l, err := NewZapLogger(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"DEBUG", "debug"},
		{"info", "info"},
		{"", "info"},
		{"warning", "warn"},
		{"error", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level.String())
		})
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := NewZapLogger(&Config{Level: "info", Output: buf})
	require.NoError(t, err)

	t.Run("carries logger and request id", func(t *testing.T) {
		buf.Reset()
		ctx := ContextWithLogger(context.Background(), l)
		ctx = requestctx.WithRequestID(ctx, "req-1")
		accountID := uuid.New()
		ctx = requestctx.WithAccountID(ctx, accountID)

		FromContext(ctx, nil).Info("hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "req-1", entry["request_id"])
		assert.Equal(t, accountID.String(), entry["account_id"])
	})

	t.Run("falls back", func(t *testing.T) {
		buf.Reset()
		FromContext(context.Background(), l).Info("fallback")
		assert.Contains(t, buf.String(), "fallback")
	})

	t.Run("nop without fallback", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background(), nil))
	})
}
