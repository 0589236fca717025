package config

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ObservabilityConfig selects where traces are exported to.
type ObservabilityConfig struct {
	OTLPEndpoint string `env:"LOANS_OTEL_ENDPOINT"`
	ServiceName  string `env:"LOANS_OTEL_SERVICE_NAME" envDefault:"loan-registry"`
}

// LoadObservability reads the ObservabilityConfig from the environment.
func LoadObservability() (ObservabilityConfig, error) {
	var cfg ObservabilityConfig
	if err := ParseEnv(&cfg); err != nil {
		return ObservabilityConfig{}, err
	}

	return cfg, nil
}

// SetupTracing registers a global tracer provider exporting to the OTLP/HTTP endpoint.
// Without an endpoint nothing is registered. The returned shutdown function flushes
// pending spans and should be deferred by the caller.
func SetupTracing(ctx context.Context, cfg ObservabilityConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if cfg.OTLPEndpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
