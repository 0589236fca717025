// Package promadapters implements the loan registry's MetricsCollector with Prometheus.
package promadapters

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/timed-access-loans/journal/sqlengine"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

var durationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

var helpTexts = map[string]string{
	loanregistry.MetricOperationDuration:   "Duration of loan registry operations by command type and status",
	loanregistry.MetricOperationCalls:      "Total loan registry operations by command type and status",
	loanregistry.MetricOperationRejections: "Total rejected loan registry operations by command type and error code",
	loanregistry.MetricActiveLoans:         "Number of loans currently stored in the registry",
	sqlengine.MetricQueryDuration:          "Duration of journal queries",
	sqlengine.MetricAppendDuration:         "Duration of journal appends",
	sqlengine.MetricSnapshotDuration:       "Duration of journal snapshot operations",
	sqlengine.MetricEventsLoaded:           "Number of events returned by the last journal load",
	sqlengine.MetricConcurrencyConflicts:   "Total journal appends rejected by the optimistic concurrency check",
	sqlengine.MetricDatabaseErrors:         "Total journal database errors by operation and error type",
}

// MetricsCollector creates Prometheus vectors on first use of a metric name.
// The label names are fixed by that first call; later calls supply an empty value
// for labels they lack and drop labels the vector does not know.
type MetricsCollector struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	histograms map[string]*labeledVec[*prometheus.HistogramVec]
	counters   map[string]*labeledVec[*prometheus.CounterVec]
	gauges     map[string]*labeledVec[*prometheus.GaugeVec]
}

type labeledVec[V prometheus.Collector] struct {
	vec        V
	labelNames []string
}

func (l *labeledVec[V]) values(labels map[string]string) []string {
	values := make([]string, len(l.labelNames))
	for i, name := range l.labelNames {
		values[i] = labels[name]
	}

	return values
}

// NewMetricsCollector registers its vectors with registerer, e.g. prometheus.DefaultRegisterer.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		registerer: registerer,
		histograms: make(map[string]*labeledVec[*prometheus.HistogramVec]),
		counters:   make(map[string]*labeledVec[*prometheus.CounterVec]),
		gauges:     make(map[string]*labeledVec[*prometheus.GaugeVec]),
	}
}

func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histograms[metric]
	if !ok {
		names := labelNamesOf(labels)
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metric,
			Help:    helpFor(metric),
			Buckets: durationBuckets,
		}, names)

		if h, ok = register(m.registerer, vec, names); !ok {
			return
		}

		m.histograms[metric] = h
	}

	h.vec.WithLabelValues(h.values(labels)...).Observe(duration.Seconds())
}

func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[metric]
	if !ok {
		names := labelNamesOf(labels)
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: metric, Help: helpFor(metric)}, names)

		if c, ok = register(m.registerer, vec, names); !ok {
			return
		}

		m.counters[metric] = c
	}

	c.vec.WithLabelValues(c.values(labels)...).Inc()
}

func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.gauges[metric]
	if !ok {
		names := labelNamesOf(labels)
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: metric, Help: helpFor(metric)}, names)

		if g, ok = register(m.registerer, vec, names); !ok {
			return
		}

		m.gauges[metric] = g
	}

	g.vec.WithLabelValues(g.values(labels)...).Set(value)
}

// register adds vec to registerer. If an equal collector is registered already, that one is reused.
func register[V prometheus.Collector](registerer prometheus.Registerer, vec V, names []string) (*labeledVec[V], bool) {
	err := registerer.Register(vec)
	if err == nil {
		return &labeledVec[V]{vec: vec, labelNames: names}, true
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		if existing, ok := alreadyRegistered.ExistingCollector.(V); ok {
			return &labeledVec[V]{vec: existing, labelNames: names}, true
		}
	}

	return nil, false
}

func labelNamesOf(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func helpFor(metric string) string {
	if help, ok := helpTexts[metric]; ok {
		return help
	}

	return strings.ReplaceAll(metric, "_", " ")
}

var _ loanregistry.MetricsCollector = (*MetricsCollector)(nil)
