// Package testdoubles provides spies for the observability interfaces of the loan registry
// and the event journal.
//
//   - MetricsCollectorSpy: captures duration, counter and value records, with or without context
//   - TracingCollectorSpy: captures spans with their start and finish attributes
//   - ContextualLoggerSpy: captures context-aware log calls per level
//   - LogHandlerSpy: a slog.Handler capturing records, for tests that log through *slog.Logger
//
// All spies are safe for concurrent use.
package testdoubles
