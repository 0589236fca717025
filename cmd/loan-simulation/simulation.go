package main

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
	"github.com/AntonStoeckl/timed-access-loans/shell"
)

const (
	statsInterval      = 10 * time.Second
	queueSizePerWorker = 4
)

// Dependencies are the wired components a LoanSimulation operates on.
type Dependencies struct {
	Registry     *loanregistry.Registry
	Recorder     *shell.JournalRecorder
	Journal      shell.EventJournal
	SnapshotName string
	Clock        *loanregistry.ManualClock
	Logger       *slog.Logger
}

// Stats counts the outcomes of executed scenarios.
type Stats struct {
	Scheduled      atomic.Int64
	Backpressure   atomic.Int64
	Succeeded      atomic.Int64
	ExpectedErrors atomic.Int64
	Rejected       atomic.Int64
	Failed         atomic.Int64

	mu             sync.Mutex
	rejectedByCode map[loanregistry.ErrorCode]int64
}

func (s *Stats) recordRejection(code loanregistry.ErrorCode) {
	s.Rejected.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectedByCode == nil {
		s.rejectedByCode = make(map[loanregistry.ErrorCode]int64)
	}
	s.rejectedByCode[code]++
}

// RejectionsByCode returns a copy of the rejection counts per error code.
func (s *Stats) RejectionsByCode() map[loanregistry.ErrorCode]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.rejectedByCode)
}

// LoanSimulation schedules scenarios at a fixed rate and executes them with a worker pool.
type LoanSimulation struct {
	config   Config
	deps     Dependencies
	state    *SimulationState
	selector *ScenarioSelector
	stats    *Stats
}

// NewLoanSimulation creates a LoanSimulation. The tracked loans are seeded from the registry.
func NewLoanSimulation(config Config, deps Dependencies) *LoanSimulation {
	state := NewSimulationState(deps.Registry.Snapshot())

	return &LoanSimulation{
		config:   config,
		deps:     deps,
		state:    state,
		selector: NewScenarioSelector(state, deps.Registry, deps.Clock, config, uint64(time.Now().UnixNano())), //nolint:gosec // seed
		stats:    &Stats{},
	}
}

// Stats returns the live outcome counters.
func (ls *LoanSimulation) Stats() *Stats {
	return ls.stats
}

// Bootstrap sets the authority contract on a registry that has none yet.
func (ls *LoanSimulation) Bootstrap(ctx context.Context) error {
	if ls.deps.Registry.Config().HasAuthority() {
		return nil
	}

	authority := AuthorityIdentity(ls.config.Issuer)
	if err := ls.deps.Registry.SetAuthorityContract(ctx, loanregistry.BuildSetAuthorityContract(ls.config.Issuer, authority)); err != nil {
		return err
	}

	ls.deps.Logger.InfoContext(ctx, "authority contract set", "authority", authority)

	return nil
}

// Run executes scenarios until ctx is canceled. It returns once all workers have stopped.
func (ls *LoanSimulation) Run(ctx context.Context) error {
	queue := make(chan Scenario, ls.config.Workers*queueSizePerWorker)

	var wg sync.WaitGroup
	for range ls.config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ls.worker(ctx, queue)
		}()
	}

	go tickClock(ctx, ls.deps.Clock, ls.config.TickInterval, ls.config.BlocksPerTick)

	rateTicker := time.NewTicker(time.Second / time.Duration(ls.config.Rate))
	defer rateTicker.Stop()

	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	var snapshots <-chan time.Time
	if ls.config.SnapshotEvery > 0 {
		snapshotTicker := time.NewTicker(ls.config.SnapshotEvery)
		defer snapshotTicker.Stop()
		snapshots = snapshotTicker.C
	}

	ls.deps.Logger.InfoContext(ctx, "simulation started",
		"rate", ls.config.Rate,
		"workers", ls.config.Workers,
		"height", ls.deps.Clock.CurrentHeight(),
		"tracked_loans", ls.state.Count(),
	)

	for {
		select {
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			ls.logStats(context.WithoutCancel(ctx), "simulation stopped")

			return nil

		case <-rateTicker.C:
			ls.schedule(queue, ls.selector.Next())

		case <-snapshots:
			if err := ls.SaveSnapshot(ctx); err != nil && ctx.Err() == nil {
				ls.deps.Logger.ErrorContext(ctx, "saving snapshot failed", "error", err)
			}

		case <-statsTicker.C:
			ls.logStats(ctx, "simulation stats")
		}
	}
}

func (ls *LoanSimulation) schedule(queue chan<- Scenario, scenario Scenario) {
	select {
	case queue <- scenario:
		ls.stats.Scheduled.Add(1)
	default:
		ls.stats.Backpressure.Add(1)
	}
}

// worker drains the queue. Scenarios still queued after cancellation are skipped,
// a running one is finished so it is never cut off between journal append and state change.
func (ls *LoanSimulation) worker(ctx context.Context, queue <-chan Scenario) {
	for scenario := range queue {
		if ctx.Err() != nil {
			continue
		}

		ls.Execute(context.WithoutCancel(ctx), scenario)
	}
}

// Execute runs one scenario against the registry and records its outcome.
func (ls *LoanSimulation) Execute(ctx context.Context, scenario Scenario) {
	ctx = shell.WithCorrelationID(ctx, uuid.New())

	err := ls.run(ctx, scenario)
	ls.track(scenario, err)
	ls.classify(ctx, scenario, err)
}

func (ls *LoanSimulation) run(ctx context.Context, scenario Scenario) error {
	registry := ls.deps.Registry
	key := scenario.Key

	switch scenario.Type {
	case ScenarioStartLoan:
		_, err := registry.StartLoan(ctx, loanregistry.BuildStartLoan(
			scenario.Caller, key.ResourceID, key.Borrower, scenario.Duration, scenario.AccessKey, scenario.Amount,
		))
		return err

	case ScenarioCheckAccess:
		_, err := registry.CheckAccess(ctx, loanregistry.BuildCheckAccess(scenario.Caller, key.ResourceID, key.Borrower))
		return err

	case ScenarioExtendLoan:
		return registry.ExtendLoan(ctx, loanregistry.BuildExtendLoan(
			scenario.Caller, key.ResourceID, key.Borrower, scenario.Duration,
		))

	case ScenarioEndLoan:
		return registry.EndLoan(ctx, loanregistry.BuildEndLoan(scenario.Caller, key.ResourceID, key.Borrower))
	}

	return nil
}

// track keeps the tracked loans in line with what the registry stored.
func (ls *LoanSimulation) track(scenario Scenario, err error) {
	switch {
	case scenario.Type == ScenarioStartLoan && (err == nil || errors.Is(err, loanregistry.ErrLoanAlreadyActive)):
		ls.state.Add(scenario.Key)
	case scenario.Type == ScenarioEndLoan && err == nil:
		ls.state.Remove(scenario.Key)
	case errors.Is(err, loanregistry.ErrLoanNotFound):
		ls.state.Remove(scenario.Key)
	}
}

func (ls *LoanSimulation) classify(ctx context.Context, scenario Scenario, err error) {
	logger := ls.deps.Logger

	if err == nil {
		ls.stats.Succeeded.Add(1)

		if scenario.IsError {
			logger.WarnContext(ctx, "error scenario succeeded", "scenario", scenario.Type, "reason", scenario.Reason)
		}

		return
	}

	if scenario.IsError && errors.Is(err, scenario.Expected) {
		ls.stats.ExpectedErrors.Add(1)
		logger.DebugContext(ctx, "expected error", "scenario", scenario.Type, "reason", scenario.Reason, "error", err)

		return
	}

	if code, ok := loanregistry.CodeOf(err); ok {
		ls.stats.recordRejection(code)
		logger.DebugContext(ctx, "scenario rejected", "scenario", scenario.Type, "key", scenario.Key.String(), "code", code)

		return
	}

	ls.stats.Failed.Add(1)
	logger.ErrorContext(ctx, "scenario failed", "scenario", scenario.Type, "key", scenario.Key.String(), "error", err)
}

// SaveSnapshot stores the current registry state.
func (ls *LoanSimulation) SaveSnapshot(ctx context.Context) error {
	snapshot, err := shell.SaveSnapshot(ctx, ls.deps.Journal, ls.deps.SnapshotName, ls.deps.Registry, ls.deps.Recorder)
	if err != nil {
		return err
	}

	ls.deps.Logger.InfoContext(ctx, "snapshot saved", "name", snapshot.Name, "sequence_number", snapshot.SequenceNumber)

	return nil
}

func (ls *LoanSimulation) logStats(ctx context.Context, msg string) {
	ls.deps.Logger.InfoContext(ctx, msg,
		"scheduled", ls.stats.Scheduled.Load(),
		"backpressure", ls.stats.Backpressure.Load(),
		"succeeded", ls.stats.Succeeded.Load(),
		"expected_errors", ls.stats.ExpectedErrors.Load(),
		"rejected", ls.stats.Rejected.Load(),
		"failed", ls.stats.Failed.Load(),
		"height", ls.deps.Clock.CurrentHeight(),
		"tracked_loans", ls.state.Count(),
		"loan_counter", ls.deps.Registry.LoanCounter(),
	)
}

// AuthorityIdentity derives the authority contract identity the simulation configures for issuer.
func AuthorityIdentity(issuer loanregistry.Identity) loanregistry.Identity {
	return issuer + ".loan-authority"
}
