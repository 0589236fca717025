// Package oteladapters implements the loan registry's observability interfaces with OpenTelemetry.
//
// The same adapters serve the registry and the journal engine, because both report
// through the loanregistry Logger, ContextualLogger, MetricsCollector and TracingCollector contracts.
package oteladapters
