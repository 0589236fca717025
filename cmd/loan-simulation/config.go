package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AntonStoeckl/timed-access-loans/config"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

// EnvConfig holds the simulation defaults read from SIM_* environment variables.
type EnvConfig struct {
	Rate           int           `env:"SIM_RATE" envDefault:"20"`
	Workers        int           `env:"SIM_WORKERS" envDefault:"4"`
	Resources      int           `env:"SIM_RESOURCES" envDefault:"200"`
	Borrowers      int           `env:"SIM_BORROWERS" envDefault:"100"`
	TickInterval   time.Duration `env:"SIM_TICK_INTERVAL" envDefault:"1s"`
	BlocksPerTick  int64         `env:"SIM_BLOCKS_PER_TICK" envDefault:"10"`
	SnapshotEvery  time.Duration `env:"SIM_SNAPSHOT_EVERY" envDefault:"30s"`
	MetricsAddr    string        `env:"SIM_METRICS_ADDR"`
	Issuer         string        `env:"SIM_ISSUER" envDefault:"ST1LIBRARY"`
	ErrorRates     string        `env:"SIM_ERROR_RATES" envDefault:"2.0,1.0,1.0"`
	PaymentDecline float64       `env:"SIM_PAYMENT_DECLINE" envDefault:"1.0"`
	Observability  bool          `env:"SIM_OBSERVABILITY" envDefault:"false"`
}

// Config holds all simulation parameters.
type Config struct {
	Rate                 int
	Workers              int
	Resources            int
	Borrowers            int
	TickInterval         time.Duration
	BlocksPerTick        loanregistry.Blocks
	SnapshotEvery        time.Duration
	MetricsAddr          string
	Issuer               loanregistry.Identity
	ErrorProbabilities   ErrorConfig
	PaymentDecline       float64
	ObservabilityEnabled bool
}

// ErrorConfig holds probabilities for intentional error scenarios, as percentages 0-100.
type ErrorConfig struct {
	UnknownLoanCheck float64 // check access to a loan that does not exist
	EarlyEnd         float64 // borrower tries to end a loan before it expired
	ExpiredExtension float64 // issuer tries to extend a loan that already expired
}

// parseConfig loads the SIM_* defaults and applies command line overrides.
func parseConfig(args []string) (Config, error) {
	var envCfg EnvConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		return Config{}, err
	}

	flags := flag.NewFlagSet("loan-simulation", flag.ContinueOnError)
	var (
		rate          = flags.Int("rate", envCfg.Rate, "Operations per second")
		workers       = flags.Int("workers", envCfg.Workers, "Number of concurrent workers")
		resources     = flags.Int("resources", envCfg.Resources, "Number of resources in the catalog")
		borrowers     = flags.Int("borrowers", envCfg.Borrowers, "Number of borrowers")
		tickInterval  = flags.Duration("tick", envCfg.TickInterval, "Wall time between clock ticks")
		blocksPerTick = flags.Int64("blocks-per-tick", envCfg.BlocksPerTick, "Height increase per clock tick")
		snapshotEvery = flags.Duration("snapshot-every", envCfg.SnapshotEvery, "Interval between registry snapshots, 0 disables them")
		metricsAddr   = flags.String("metrics-addr", envCfg.MetricsAddr, "Serve Prometheus metrics on this address")
		issuer        = flags.String("issuer", envCfg.Issuer, "Identity of the loan issuer")
		errorRates    = flags.String("error-rates", envCfg.ErrorRates, "Comma-separated error probabilities: unknown-check,early-end,expired-extension")
		decline       = flags.Float64("payment-decline", envCfg.PaymentDecline, "Probability in percent that a payment is declined")
		observability = flags.Bool("observability-enabled", envCfg.Observability, "Report through the global OpenTelemetry providers")
	)

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	errorConfig, err := parseErrorProbabilities(*errorRates)
	if err != nil {
		return Config{}, fmt.Errorf("invalid error rates %q: %w", *errorRates, err)
	}

	cfg := Config{
		Rate:                 *rate,
		Workers:              *workers,
		Resources:            *resources,
		Borrowers:            *borrowers,
		TickInterval:         *tickInterval,
		BlocksPerTick:        *blocksPerTick,
		SnapshotEvery:        *snapshotEvery,
		MetricsAddr:          *metricsAddr,
		Issuer:               loanregistry.Identity(*issuer),
		ErrorProbabilities:   errorConfig,
		PaymentDecline:       *decline,
		ObservabilityEnabled: *observability,
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.Rate < 1:
		return errors.New("rate must be positive")
	case c.Workers < 1:
		return errors.New("workers must be positive")
	case c.Resources < 1 || c.Borrowers < 1:
		return errors.New("resources and borrowers must be positive")
	case c.TickInterval <= 0 || c.BlocksPerTick < 1:
		return errors.New("tick interval and blocks per tick must be positive")
	case c.PaymentDecline < 0 || c.PaymentDecline > 100:
		return errors.New("payment decline probability out of range [0, 100]")
	case c.Issuer == "":
		return errors.New("issuer must not be empty")
	}

	return nil
}

// parseErrorProbabilities parses comma-separated error probability percentages.
func parseErrorProbabilities(probabilitiesStr string) (ErrorConfig, error) {
	parts := strings.Split(probabilitiesStr, ",")
	if len(parts) != 3 {
		return ErrorConfig{}, fmt.Errorf("expected 3 probabilities, got %d", len(parts))
	}

	probabilities := make([]float64, 3)
	for i, part := range parts {
		prob, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return ErrorConfig{}, fmt.Errorf("invalid probability '%s': %w", part, err)
		}
		if prob < 0 || prob > 100 {
			return ErrorConfig{}, fmt.Errorf("probability %f out of range [0, 100]", prob)
		}
		probabilities[i] = prob
	}

	return ErrorConfig{
		UnknownLoanCheck: probabilities[0],
		EarlyEnd:         probabilities[1],
		ExpiredExtension: probabilities[2],
	}, nil
}
