package main

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

// ScenarioType represents the operation a scenario executes.
type ScenarioType string

const (
	ScenarioStartLoan   ScenarioType = "start_loan"
	ScenarioCheckAccess ScenarioType = "check_access"
	ScenarioExtendLoan  ScenarioType = "extend_loan"
	ScenarioEndLoan     ScenarioType = "end_loan"
)

const (
	minDurationTicks = 10
	maxDurationTicks = 120
	minAmountPaid    = 100
	maxAmountPaid    = 1000
	pickAttempts     = 8
)

// Scenario represents a single operation to be executed by the simulation.
type Scenario struct {
	Type      ScenarioType
	Key       loanregistry.LoanKey
	Caller    loanregistry.Identity
	Duration  loanregistry.Blocks
	AccessKey []byte
	Amount    loanregistry.Amount
	IsError   bool  // intentional error scenario
	Expected  error // the rejection an intentional error scenario must produce
	Reason    string
}

// LoanReader gives read access to the registry's loans.
type LoanReader interface {
	Loan(key loanregistry.LoanKey) (loanregistry.Loan, bool)
}

// SimulationState tracks the keys of the loans the simulation believes to be stored.
type SimulationState struct {
	mu      sync.Mutex
	keys    []loanregistry.LoanKey
	indices map[loanregistry.LoanKey]int
}

// NewSimulationState seeds the tracked keys from a registry snapshot.
func NewSimulationState(snapshot loanregistry.StateSnapshot) *SimulationState {
	state := &SimulationState{indices: make(map[loanregistry.LoanKey]int, len(snapshot.Loans))}
	for _, record := range snapshot.Loans {
		state.Add(record.Key)
	}

	return state
}

func (s *SimulationState) Add(key loanregistry.LoanKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indices[key]; ok {
		return
	}

	s.indices[key] = len(s.keys)
	s.keys = append(s.keys, key)
}

func (s *SimulationState) Remove(key loanregistry.LoanKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indices[key]
	if !ok {
		return
	}

	last := len(s.keys) - 1
	s.keys[i] = s.keys[last]
	s.indices[s.keys[i]] = i
	s.keys = s.keys[:last]
	delete(s.indices, key)
}

func (s *SimulationState) Contains(key loanregistry.LoanKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.indices[key]

	return ok
}

func (s *SimulationState) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.keys)
}

func (s *SimulationState) random(rng *rand.Rand) (loanregistry.LoanKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.keys) == 0 {
		return loanregistry.LoanKey{}, false
	}

	return s.keys[rng.IntN(len(s.keys))], true
}

// ScenarioSelector picks realistic scenarios based on the tracked loans and the registry.
// It is not safe for concurrent use.
type ScenarioSelector struct {
	state  *SimulationState
	loans  LoanReader
	clock  loanregistry.Clock
	config Config
	rng    *rand.Rand
}

// NewScenarioSelector creates a ScenarioSelector. The seed makes the sequence of choices reproducible.
func NewScenarioSelector(
	state *SimulationState,
	loans LoanReader,
	clock loanregistry.Clock,
	config Config,
	seed uint64,
) *ScenarioSelector {

	return &ScenarioSelector{
		state:  state,
		loans:  loans,
		clock:  clock,
		config: config,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // simulation only
	}
}

// Next returns the next scenario to execute.
func (s *ScenarioSelector) Next() Scenario {
	if scenario, ok := s.nextErrorScenario(); ok {
		return scenario
	}

	if s.state.Count() == 0 {
		return s.startLoan()
	}

	switch roll := s.rng.IntN(100); {
	case roll < 35:
		return s.startLoan()
	case roll < 70:
		return s.checkAccess()
	case roll < 80:
		return s.extendLoan()
	default:
		return s.endLoan()
	}
}

func (s *ScenarioSelector) nextErrorScenario() (Scenario, bool) {
	probabilities := s.config.ErrorProbabilities
	roll := s.rng.Float64() * 100

	switch {
	case roll < probabilities.UnknownLoanCheck:
		return s.unknownLoanCheck(), true
	case roll < probabilities.UnknownLoanCheck+probabilities.EarlyEnd:
		return s.earlyEnd()
	case roll < probabilities.UnknownLoanCheck+probabilities.EarlyEnd+probabilities.ExpiredExtension:
		return s.expiredExtension()
	}

	return Scenario{}, false
}

func (s *ScenarioSelector) startLoan() Scenario {
	key := s.randomKey()
	for range pickAttempts {
		if !s.state.Contains(key) {
			break
		}
		key = s.randomKey()
	}

	accessKey := uuid.New()

	return Scenario{
		Type:      ScenarioStartLoan,
		Key:       key,
		Caller:    s.config.Issuer,
		Duration:  s.randomDuration(),
		AccessKey: accessKey[:],
		Amount:    loanregistry.Amount(minAmountPaid + s.rng.IntN(maxAmountPaid-minAmountPaid+1)),
	}
}

func (s *ScenarioSelector) checkAccess() Scenario {
	key, _ := s.state.random(s.rng)

	return Scenario{Type: ScenarioCheckAccess, Key: key, Caller: key.Borrower}
}

func (s *ScenarioSelector) extendLoan() Scenario {
	key, ok := s.pickLoan(func(loan loanregistry.Loan, height loanregistry.Height) bool {
		return !loan.Extended && !loan.IsExpiredAt(height)
	})
	if !ok {
		return s.checkAccess()
	}

	return Scenario{
		Type:     ScenarioExtendLoan,
		Key:      key,
		Caller:   s.config.Issuer,
		Duration: s.randomDuration(),
	}
}

// endLoan lets the borrower end an expired loan and the issuer end a running one.
func (s *ScenarioSelector) endLoan() Scenario {
	key, _ := s.state.random(s.rng)

	caller := s.config.Issuer
	if loan, found := s.loans.Loan(key); found && loan.IsExpiredAt(s.clock.CurrentHeight()) {
		caller = key.Borrower
	}

	return Scenario{Type: ScenarioEndLoan, Key: key, Caller: caller}
}

func (s *ScenarioSelector) unknownLoanCheck() Scenario {
	key := loanregistry.BuildLoanKey(
		loanregistry.ResourceID(s.config.Resources+1+s.rng.IntN(s.config.Resources)), //nolint:gosec // positive
		s.randomBorrower(),
	)

	return Scenario{
		Type:     ScenarioCheckAccess,
		Key:      key,
		Caller:   key.Borrower,
		IsError:  true,
		Expected: loanregistry.ErrLoanNotFound,
		Reason:   "check access to a resource outside the catalog",
	}
}

func (s *ScenarioSelector) earlyEnd() (Scenario, bool) {
	key, ok := s.pickLoan(func(loan loanregistry.Loan, height loanregistry.Height) bool {
		return !loan.IsExpiredAt(height)
	})
	if !ok {
		return Scenario{}, false
	}

	return Scenario{
		Type:     ScenarioEndLoan,
		Key:      key,
		Caller:   key.Borrower,
		IsError:  true,
		Expected: loanregistry.ErrNotAuthorized,
		Reason:   "borrower ends a loan whose window is still open",
	}, true
}

func (s *ScenarioSelector) expiredExtension() (Scenario, bool) {
	key, ok := s.pickLoan(func(loan loanregistry.Loan, height loanregistry.Height) bool {
		return !loan.Extended && loan.IsExpiredAt(height)
	})
	if !ok {
		return Scenario{}, false
	}

	return Scenario{
		Type:     ScenarioExtendLoan,
		Key:      key,
		Caller:   s.config.Issuer,
		Duration: s.randomDuration(),
		IsError:  true,
		Expected: loanregistry.ErrLoanExpired,
		Reason:   "issuer extends a loan that already expired",
	}, true
}

// pickLoan samples tracked loans until one matches or the attempts are used up.
func (s *ScenarioSelector) pickLoan(
	matches func(loan loanregistry.Loan, height loanregistry.Height) bool,
) (loanregistry.LoanKey, bool) {

	height := s.clock.CurrentHeight()

	for range pickAttempts {
		key, ok := s.state.random(s.rng)
		if !ok {
			return loanregistry.LoanKey{}, false
		}

		if loan, found := s.loans.Loan(key); found && matches(loan, height) {
			return key, true
		}
	}

	return loanregistry.LoanKey{}, false
}

func (s *ScenarioSelector) randomKey() loanregistry.LoanKey {
	resourceID := loanregistry.ResourceID(1 + s.rng.IntN(s.config.Resources)) //nolint:gosec // positive

	return loanregistry.BuildLoanKey(resourceID, s.randomBorrower())
}

func (s *ScenarioSelector) randomBorrower() loanregistry.Identity {
	return BorrowerIdentity(1 + s.rng.IntN(s.config.Borrowers))
}

func (s *ScenarioSelector) randomDuration() loanregistry.Blocks {
	ticks := loanregistry.Blocks(minDurationTicks + s.rng.IntN(maxDurationTicks-minDurationTicks+1))

	return min(max(ticks*s.config.BlocksPerTick, 1), loanregistry.DefaultMaxLoanDuration)
}

// BorrowerIdentity returns the identity of the n-th simulated borrower.
func BorrowerIdentity(n int) loanregistry.Identity {
	return loanregistry.Identity(fmt.Sprintf("ST1BORROWER%05d", n))
}
