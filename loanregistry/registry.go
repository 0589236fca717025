package loanregistry

import (
	"context"
	"errors"
	"sync"
)

// Command is an operation request carrying the identity of its caller.
type Command interface {
	CommandType() string
	CallerIdentity() Identity
}

type keyedCommand interface {
	Command
	LoanKey() LoanKey
}

// Registry owns all loan state and executes the loan lifecycle operations.
// It is safe for concurrent use; operations are serialized.
type Registry struct {
	mu               sync.Mutex
	issuer           Identity
	payments         PaymentAuthority
	resources        ResourceOwnership
	clock            Clock
	state            State
	recorder         EventRecorder
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewRegistry creates a Registry for the given issuer with a fresh state.
func NewRegistry(
	issuer Identity,
	payments PaymentAuthority,
	resources ResourceOwnership,
	clock Clock,
	options ...Option,
) (*Registry, error) {

	switch {
	case issuer == "":
		return nil, ErrEmptyIssuer
	case payments == nil:
		return nil, ErrNilPaymentAuthority
	case resources == nil:
		return nil, ErrNilResourceOwnership
	case clock == nil:
		return nil, ErrNilClock
	}

	r := &Registry{
		issuer:    issuer,
		payments:  payments,
		resources: resources,
		clock:     clock,
		state:     NewState(),
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Issuer returns the identity allowed to start and extend loans.
func (r *Registry) Issuer() Identity {
	return r.issuer
}

// decideFunc takes the business decision for one command at the given height.
type decideFunc func(ctx context.Context, state *State, height Height) DecisionResult

// execute runs one command: decide, record the resulting event, then apply it.
// Must be called with r.mu held.
func (r *Registry) execute(ctx context.Context, command Command, decide decideFunc) (DecisionResult, error) {
	observer, ctx := r.startObserving(ctx, command)

	height := r.clock.CurrentHeight()
	observer.atHeight(height)

	result := decide(ctx, &r.state, height)

	if result.HasEventToRecord() {
		if err := r.record(ctx, command, result.Event); err != nil {
			observer.failed(err)
			return DecisionResult{}, err
		}

		r.state.Apply(result.Event)
	}

	if err := result.HasError(); err != nil {
		observer.rejected(err)
		return result, err
	}

	observer.succeeded(result.Event)

	return result, nil
}

func (r *Registry) record(ctx context.Context, command Command, event DomainEvent) error {
	if r.recorder == nil {
		return nil
	}

	if err := r.recorder.Record(ctx, command.CallerIdentity(), command.CommandType(), event); err != nil {
		return errors.Join(ErrRecordingEventFailed, err)
	}

	return nil
}

// Loan returns a copy of the loan stored under key, including loans that already expired.
func (r *Registry) Loan(key LoanKey) (Loan, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.Loan(key)
}

// History returns a copy of the audit trail of key, newest entry first.
func (r *Registry) History(key LoanKey) History {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.History(key)
}

// Config returns the current configuration.
func (r *Registry) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.Config()
}

// LoanCounter returns the id the next started loan will get.
func (r *Registry) LoanCounter() LoanID {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.LoanCounter()
}

// Snapshot exports a deep copy of the whole registry state.
func (r *Registry) Snapshot() StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.Export()
}

// SnapshotWith exports the state like Snapshot and runs capture while the registry
// still holds its lock. No operation can run between capture and the export, which
// lets callers pair the snapshot with a position read from the EventRecorder.
func (r *Registry) SnapshotWith(capture func()) StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	capture()

	return r.state.Export()
}
