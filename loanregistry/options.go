package loanregistry

// Option defines a functional option for configuring a Registry.
type Option func(*Registry) error

// WithLogger sets the logger for the Registry.
//
// Debug level: every command with caller and loan key
// Info level: outcome, error code and duration of every command
// Error level: failures of the event recorder.
func WithLogger(logger Logger) Option {
	return func(r *Registry) error {
		r.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Registry.
// Log records then carry the command's context, e.g. for trace correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(r *Registry) error {
		r.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Registry.
func WithMetrics(collector MetricsCollector) Option {
	return func(r *Registry) error {
		r.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Registry. Every command runs in its own span.
func WithTracing(collector TracingCollector) Option {
	return func(r *Registry) error {
		r.tracingCollector = collector
		return nil
	}
}

// WithEventRecorder makes the Registry persist every event before applying it.
func WithEventRecorder(recorder EventRecorder) Option {
	return func(r *Registry) error {
		if recorder == nil {
			return ErrNilRecorder
		}

		r.recorder = recorder

		return nil
	}
}

// WithState starts the Registry from a previously built state instead of a fresh one,
// e.g. one restored from a snapshot or folded from recorded events.
func WithState(state State) Option {
	return func(r *Registry) error {
		r.state = RestoreState(state.Export())
		return nil
	}
}
