package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/timed-access-loans/oteladapters"
)

func newTracingFixture() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("loanregistry")), exporter
}

func attributeOf(span tracetest.SpanStub, key string) (string, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_RecordsSpanWithStartAndEndAttributes(t *testing.T) {
	// arrange
	collector, exporter := newTracingFixture()

	// act
	_, span := collector.StartSpan(context.Background(), "loanregistry.StartLoan", map[string]string{"command.type": "StartLoan"})
	span.AddAttribute("registry.height", "42")
	collector.FinishSpan(span, "success", map[string]string{"event.type": "LoanStarted"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "loanregistry.StartLoan", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, expected := range map[string]string{
		"command.type":    "StartLoan",
		"registry.height": "42",
		"event.type":      "LoanStarted",
	} {
		value, found := attributeOf(spans[0], key)
		assert.True(t, found, "attribute %s missing", key)
		assert.Equal(t, expected, value)
	}
}

func Test_TracingCollector_MapsStatuses(t *testing.T) {
	testCases := []struct {
		status          string
		expectedCode    codes.Code
		expectedOutcome string
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "conflict", expectedCode: codes.Error},
		{status: "rejected", expectedCode: codes.Unset, expectedOutcome: "rejected"},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := newTracingFixture()
			_, span := collector.StartSpan(context.Background(), "loanregistry.EndLoan", nil)

			// act
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)

			outcome, found := attributeOf(spans[0], "outcome")
			assert.Equal(t, tc.expectedOutcome != "", found)
			assert.Equal(t, tc.expectedOutcome, outcome)
		})
	}
}

func Test_TracingCollector_NestsSpansThroughTheContext(t *testing.T) {
	// arrange
	collector, exporter := newTracingFixture()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "loanregistry.StartLoan", nil)
	_, child := collector.StartSpan(ctx, "journal.append", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "journal.append", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}
