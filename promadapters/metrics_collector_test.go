package promadapters_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/timed-access-loans/promadapters"
)

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.IncrementCounter("loanregistry_operation_rejections_total", map[string]string{"command_type": "EndLoan", "error_code": "106"})
	collector.IncrementCounter("loanregistry_operation_rejections_total", map[string]string{"command_type": "EndLoan", "error_code": "106"})
	collector.IncrementCounter("loanregistry_operation_rejections_total", map[string]string{"command_type": "CheckAccess", "error_code": "101"})

	// assert
	expected := `
# HELP loanregistry_operation_rejections_total Total rejected loan registry operations by command type and error code
# TYPE loanregistry_operation_rejections_total counter
loanregistry_operation_rejections_total{command_type="CheckAccess",error_code="101"} 1
loanregistry_operation_rejections_total{command_type="EndLoan",error_code="106"} 2
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "loanregistry_operation_rejections_total")
	assert.NoError(t, err)
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{"command_type": "StartLoan", "status": "success"}

	// act
	collector.RecordDuration("loanregistry_operation_duration_seconds", 2*time.Millisecond, labels)
	collector.RecordDuration("loanregistry_operation_duration_seconds", 40*time.Millisecond, labels)

	// assert
	count, err := testutil.GatherAndCount(registry, "loanregistry_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one histogram series per label set")

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	histogram := families[0].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), histogram.GetSampleCount())
	assert.InDelta(t, 0.042, histogram.GetSampleSum(), 0.0001)
}

func Test_MetricsCollector_RecordValue_SetsTheGauge(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.RecordValue("loanregistry_active_loans", 4, nil)
	collector.RecordValue("loanregistry_active_loans", 2, nil)

	// assert
	expected := `
# HELP loanregistry_active_loans Number of loans currently stored in the registry
# TYPE loanregistry_active_loans gauge
loanregistry_active_loans 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "loanregistry_active_loans"))
}

func Test_MetricsCollector_KeepsTheFirstLabelSet(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.IncrementCounter("journal_database_errors_total", map[string]string{"operation": "load", "error_type": "scan"})
	collector.IncrementCounter("journal_database_errors_total", map[string]string{"operation": "append", "extra": "dropped"})

	// assert
	expected := `
# HELP journal_database_errors_total Total journal database errors by operation and error type
# TYPE journal_database_errors_total counter
journal_database_errors_total{error_type="",operation="append"} 1
journal_database_errors_total{error_type="scan",operation="load"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "journal_database_errors_total"))
}

func Test_MetricsCollector_ReusesAlreadyRegisteredCollectors(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{"operation": "append"}

	// act
	first.IncrementCounter("journal_concurrency_conflicts_total", labels)
	second.IncrementCounter("journal_concurrency_conflicts_total", labels)

	// assert
	expected := `
# HELP journal_concurrency_conflicts_total Total journal appends rejected by the optimistic concurrency check
# TYPE journal_concurrency_conflicts_total counter
journal_concurrency_conflicts_total{operation="append"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "journal_concurrency_conflicts_total"))
}
