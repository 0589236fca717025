package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/timed-access-loans/oteladapters"
)

func newMeterFixture() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("loanregistry")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration_RecordsSeconds(t *testing.T) {
	// arrange
	collector, reader := newMeterFixture()
	labels := map[string]string{"command_type": "StartLoan", "status": "success"}

	// act
	collector.RecordDurationContext(context.Background(), "loanregistry_operation_duration_seconds", 150*time.Millisecond, labels)

	// assert
	m := findMetric(t, collect(t, reader), "loanregistry_operation_duration_seconds")
	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected a float64 histogram")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("command_type", "StartLoan"),
		attribute.String("status", "success"),
	)
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter_SumsPerLabelSet(t *testing.T) {
	// arrange
	collector, reader := newMeterFixture()

	// act
	collector.IncrementCounter("loanregistry_operation_rejections_total", map[string]string{"error_code": "106"})
	collector.IncrementCounter("loanregistry_operation_rejections_total", map[string]string{"error_code": "106"})
	collector.IncrementCounter("loanregistry_operation_rejections_total", map[string]string{"error_code": "101"})

	// assert
	m := findMetric(t, collect(t, reader), "loanregistry_operation_rejections_total")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum")
	require.Len(t, sum.DataPoints, 2)

	totals := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		code, _ := dp.Attributes.Value("error_code")
		totals[code.AsString()] = dp.Value
	}

	assert.Equal(t, map[string]int64{"106": 2, "101": 1}, totals)
}

func Test_MetricsCollector_RecordValue_KeepsTheLastValue(t *testing.T) {
	// arrange
	collector, reader := newMeterFixture()

	// act
	collector.RecordValue("loanregistry_active_loans", 3, nil)
	collector.RecordValueContext(context.Background(), "loanregistry_active_loans", 5, nil)

	// assert
	m := findMetric(t, collect(t, reader), "loanregistry_active_loans")
	gauge, ok := m.Data.(metricdata.Gauge[float64])
	require.True(t, ok, "expected a float64 gauge")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 5.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	// arrange
	collector, reader := newMeterFixture()
	var wg sync.WaitGroup

	// act
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("journal_concurrency_conflicts_total", map[string]string{"operation": "append"})
		}()
	}
	wg.Wait()

	// assert
	m := findMetric(t, collect(t, reader), "journal_concurrency_conflicts_total")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(20), sum.DataPoints[0].Value)
}
