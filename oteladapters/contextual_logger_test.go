package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/timed-access-loans/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_LogsAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message", "loan_key", "1/ST2BORROWER")
	logger.InfoContext(ctx, "info message", "height", 42)
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message", "error", "payment failed")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG","msg":"debug message","loan_key":"1/ST2BORROWER"`)
	assert.Contains(t, output, `"level":"INFO","msg":"info message","height":42`)
	assert.Contains(t, output, `"level":"WARN","msg":"warn message"`)
	assert.Contains(t, output, `"level":"ERROR","msg":"error message","error":"payment failed"`)
}

func Test_SlogBridgeLogger_WithProvider_DoesNotPanic(t *testing.T) {
	// arrange
	logger := oteladapters.NewSlogBridgeLoggerWithProvider("loanregistry", noop.NewLoggerProvider())

	// act & assert
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "loanregistry: command succeeded", "command_type", "StartLoan")
	})
}

func Test_OTelLogger_AllLevels_DoNotPanic(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("loanregistry"))
	ctx := context.Background()

	// act & assert
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug message", "key", "value")
		logger.InfoContext(ctx, "info message", "key", 1)
		logger.WarnContext(ctx, "warn message", "dangling")
		logger.ErrorContext(ctx, "error message", "error", errors.New("boom"))
	})
}

func Test_KeyValues_ConvertsTypedValues(t *testing.T) {
	// arrange
	args := []any{
		"caller", "ST1LIBRARY",
		"height", int64(1440),
		"loan_id", uint64(7),
		"count", 3,
		"granted", true,
		"duration_ms", 1.25,
		"elapsed", 1500 * time.Millisecond,
		"error", errors.New("payment failed"),
		42, "non-string key is dropped",
		"dangling",
	}

	// act
	attrs := oteladapters.KeyValues(args)

	// assert
	require.Len(t, attrs, 8)
	byKey := make(map[string]log.Value, len(attrs))
	for _, attr := range attrs {
		byKey[attr.Key] = attr.Value
	}

	assert.Equal(t, "ST1LIBRARY", byKey["caller"].AsString())
	assert.Equal(t, int64(1440), byKey["height"].AsInt64())
	assert.Equal(t, int64(7), byKey["loan_id"].AsInt64())
	assert.Equal(t, int64(3), byKey["count"].AsInt64())
	assert.True(t, byKey["granted"].AsBool())
	assert.InDelta(t, 1.25, byKey["duration_ms"].AsFloat64(), 0.0001)
	assert.Equal(t, int64(1500), byKey["elapsed"].AsInt64())
	assert.Equal(t, "payment failed", byKey["error"].AsString())
}
