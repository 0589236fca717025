package journal

import "github.com/AntonStoeckl/timed-access-loans/observability"

// The journal reports through the same observability contracts as the registry,
// so one set of adapters serves both.
type (
	Logger                     = observability.Logger
	ContextualLogger           = observability.ContextualLogger
	MetricsCollector           = observability.MetricsCollector
	ContextualMetricsCollector = observability.ContextualMetricsCollector
	TracingCollector           = observability.TracingCollector
	SpanContext                = observability.SpanContext
)
