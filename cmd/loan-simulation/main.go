package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/timed-access-loans/config"
	"github.com/AntonStoeckl/timed-access-loans/journal/sqlengine"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
	"github.com/AntonStoeckl/timed-access-loans/oteladapters"
	"github.com/AntonStoeckl/timed-access-loans/promadapters"
	"github.com/AntonStoeckl/timed-access-loans/shell"
)

const (
	instrumentationName = "loan-simulation"
	shutdownTimeout     = 10 * time.Second
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("loan simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, logger *slog.Logger) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	dbCfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting loan simulation", "db_adapter", dbCfg.DBAdapter, "rate", cfg.Rate, "workers", cfg.Workers)

	obs, err := setupObservability(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(logger, "observability", obs.shutdown)

	j, closeJournal, err := config.OpenJournal(ctx, dbCfg, obs.journalOptions...)
	if err != nil {
		return err
	}
	defer closeJournal()

	clock := loanregistry.NewManualClock(0)

	registry, recorder, err := shell.OpenRegistry(
		ctx,
		j,
		dbCfg.SnapshotName,
		shell.Collaborators{
			Issuer:    cfg.Issuer,
			Payments:  NewPaymentGateway(cfg.PaymentDecline),
			Resources: NewResourceCatalog(cfg.Issuer, cfg.Resources),
			Clock:     clock,
		},
		obs.registryOptions...,
	)
	if err != nil {
		return err
	}

	if err := clock.Set(lastKnownHeight(registry.Snapshot())); err != nil {
		return err
	}

	simulation := NewLoanSimulation(cfg, Dependencies{
		Registry:     registry,
		Recorder:     recorder,
		Journal:      j,
		SnapshotName: dbCfg.SnapshotName,
		Clock:        clock,
		Logger:       logger,
	})

	if err := simulation.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap registry: %w", err)
	}

	if obs.metricsHandler != nil {
		server := serveMetrics(cfg.MetricsAddr, obs.metricsHandler, logger)
		defer shutdownWithTimeout(logger, "metrics server", server.Shutdown)
	}

	if err := simulation.Run(ctx); err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return simulation.SaveSnapshot(shutdownCtx)
}

type observability struct {
	registryOptions []loanregistry.Option
	journalOptions  []sqlengine.Option
	metricsHandler  http.Handler
	shutdown        func(context.Context) error
}

// setupObservability wires logging always, Prometheus metrics when a metrics address is set,
// and OpenTelemetry tracing (plus OTel metrics without Prometheus) when observability is enabled.
func setupObservability(ctx context.Context, cfg Config, logger *slog.Logger) (observability, error) {
	obs := observability{
		registryOptions: []loanregistry.Option{loanregistry.WithContextualLogger(logger)},
		journalOptions:  []sqlengine.Option{sqlengine.WithContextualLogger(logger)},
		shutdown:        func(context.Context) error { return nil },
	}

	var metrics loanregistry.MetricsCollector

	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		metrics = promadapters.NewMetricsCollector(registry)
		obs.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	if cfg.ObservabilityEnabled {
		obsCfg, err := config.LoadObservability()
		if err != nil {
			return observability{}, err
		}

		shutdown, err := config.SetupTracing(ctx, obsCfg)
		if err != nil {
			return observability{}, fmt.Errorf("setup tracing: %w", err)
		}
		obs.shutdown = shutdown

		tracing := oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
		obs.registryOptions = append(obs.registryOptions, loanregistry.WithTracing(tracing))
		obs.journalOptions = append(obs.journalOptions, sqlengine.WithTracing(tracing))

		if metrics == nil {
			metrics = oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
		}

		logger.Info("observability enabled", "otlp_endpoint", obsCfg.OTLPEndpoint, "service", obsCfg.ServiceName)
	}

	if metrics != nil {
		obs.registryOptions = append(obs.registryOptions, loanregistry.WithMetrics(metrics))
		obs.journalOptions = append(obs.journalOptions, sqlengine.WithMetrics(metrics))
	}

	return obs, nil
}

func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return server
}

func shutdownWithTimeout(logger *slog.Logger, what string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "component", what, "error", err)
	}
}
