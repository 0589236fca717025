package loanregistry

import (
	"cmp"
	"maps"
	"slices"
)

// State is the registry aggregate. Apply is its only mutation path.
type State struct {
	config      Config
	loanCounter LoanID
	loans       map[LoanKey]Loan
	histories   map[LoanKey]History
}

// NewState returns the state of a fresh registry.
func NewState() State {
	return State{
		config:    DefaultConfig(),
		loans:     make(map[LoanKey]Loan),
		histories: make(map[LoanKey]History),
	}
}

// Apply folds one event into the state. Unknown events are ignored.
func (s *State) Apply(event DomainEvent) {
	switch e := event.(type) {
	case AuthorityContractSet:
		s.config.AuthorityContract = e.Authority

	case MaxLoanDurationSet:
		s.config.MaxLoanDuration = e.MaxLoanDuration

	case ExtensionFeeSet:
		s.config.ExtensionFee = e.ExtensionFee

	case LoanStarted:
		key := e.ForLoanKey()
		s.loans[key] = Loan{
			ID:         e.LoanID,
			StartTime:  e.OccurredAt,
			Duration:   e.Duration,
			AccessKey:  e.AccessKey,
			AmountPaid: e.AmountPaid,
		}
		s.loanCounter = max(s.loanCounter, e.LoanID+1)
		s.appendHistory(key, e.OccurredAt, ActionStartLoan, true)

	case AccessDenied:
		s.appendHistory(e.ForLoanKey(), e.OccurredAt, ActionAccessDenied, false)

	case LoanEnded:
		key := e.ForLoanKey()
		delete(s.loans, key)
		s.appendHistory(key, e.OccurredAt, ActionEndLoan, true)

	case LoanExtended:
		key := e.ForLoanKey()
		loan, ok := s.loans[key]
		if !ok {
			return
		}

		loan.Duration = addBlocks(loan.Duration, e.AdditionalDuration)
		loan.Extended = true
		loan.AmountPaid += e.FeePaid
		s.loans[key] = loan
		s.appendHistory(key, e.OccurredAt, ActionExtendLoan, true)
	}
}

// ApplyAll folds events in order.
func (s *State) ApplyAll(events DomainEvents) {
	for _, event := range events {
		s.Apply(event)
	}
}

func (s *State) appendHistory(key LoanKey, at Height, action Action, success bool) {
	s.histories[key] = s.histories[key].prepend(HistoryEntry{Timestamp: at, Action: action, Success: success})
}

// Config returns the current configuration.
func (s *State) Config() Config {
	return s.config
}

// LoanCounter returns the id the next started loan will get.
func (s *State) LoanCounter() LoanID {
	return s.loanCounter
}

// Loan returns a copy of the loan stored under key.
func (s *State) Loan(key LoanKey) (Loan, bool) {
	loan, ok := s.loans[key]
	if !ok {
		return Loan{}, false
	}

	return loan.clone(), true
}

// History returns a copy of the audit trail of key, newest entry first.
// It is empty, never nil, for keys without history.
func (s *State) History(key LoanKey) History {
	h := s.histories[key].clone()
	if h == nil {
		return History{}
	}

	return h
}

// ActiveLoanCount returns the number of stored loans, including expired ones nobody ended yet.
func (s *State) ActiveLoanCount() int {
	return len(s.loans)
}

// StateSnapshot is the exported, serializable form of a State.
type StateSnapshot struct {
	Config      Config
	LoanCounter LoanID
	Loans       []LoanRecord
	Histories   []HistoryRecord
}

// LoanRecord pairs a Loan with its key.
type LoanRecord struct {
	Key  LoanKey
	Loan Loan
}

// HistoryRecord pairs a History with its key.
type HistoryRecord struct {
	Key     LoanKey
	Entries History
}

// Export returns a deep copy of the state, with records sorted by key.
func (s *State) Export() StateSnapshot {
	snapshot := StateSnapshot{
		Config:      s.config,
		LoanCounter: s.loanCounter,
		Loans:       make([]LoanRecord, 0, len(s.loans)),
		Histories:   make([]HistoryRecord, 0, len(s.histories)),
	}

	for _, key := range sortedKeys(s.loans) {
		snapshot.Loans = append(snapshot.Loans, LoanRecord{Key: key, Loan: s.loans[key].clone()})
	}

	for _, key := range sortedKeys(s.histories) {
		snapshot.Histories = append(snapshot.Histories, HistoryRecord{Key: key, Entries: s.histories[key].clone()})
	}

	return snapshot
}

// RestoreState rebuilds a State from an exported snapshot.
func RestoreState(snapshot StateSnapshot) State {
	s := NewState()
	s.config = snapshot.Config
	s.loanCounter = snapshot.LoanCounter

	for _, record := range snapshot.Loans {
		s.loans[record.Key] = record.Loan.clone()
	}

	for _, record := range snapshot.Histories {
		entries := record.Entries.clone()
		if len(entries) > MaxHistoryEntries {
			entries = entries[:MaxHistoryEntries]
		}
		s.histories[record.Key] = entries
	}

	return s
}

func compareLoanKeys(a, b LoanKey) int {
	if c := cmp.Compare(a.ResourceID, b.ResourceID); c != 0 {
		return c
	}

	return cmp.Compare(a.Borrower, b.Borrower)
}

func sortedKeys[V any](m map[LoanKey]V) []LoanKey {
	return slices.SortedFunc(maps.Keys(m), compareLoanKeys)
}
