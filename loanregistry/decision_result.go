package loanregistry

// DecisionResult represents the outcome of a business decision.
//
// DecisionResult should only be constructed using the factory functions:
// ReadOnlyDecision(), SuccessDecision(event), RejectDecision(err) or ErrorDecision(event, err).
type DecisionResult struct {
	Outcome string      // "read-only", "success", "rejected" or "error"
	Event   DomainEvent // nil for read-only and rejected decisions
	Err     error
}

const (
	readOnlyOutcome = "read-only"
	successOutcome  = "success"
	rejectedOutcome = "rejected"
	errorOutcome    = "error"
)

// ReadOnlyDecision creates a DecisionResult for a successful operation that changes nothing.
func ReadOnlyDecision() DecisionResult {
	return DecisionResult{Outcome: readOnlyOutcome}
}

// SuccessDecision creates a DecisionResult indicating a successful state change with an event to record.
func SuccessDecision(event DomainEvent) DecisionResult {
	return DecisionResult{Outcome: successOutcome, Event: event}
}

// RejectDecision creates a DecisionResult for a business rule violation that leaves no trace.
func RejectDecision(err error) DecisionResult {
	return DecisionResult{Outcome: rejectedOutcome, Err: err}
}

// ErrorDecision creates a DecisionResult for a business rule violation with an error event to record.
func ErrorDecision(event DomainEvent, err error) DecisionResult {
	return DecisionResult{Outcome: errorOutcome, Event: event, Err: err}
}

// HasEventToRecord returns true if there is an event to record and apply.
func (r DecisionResult) HasEventToRecord() bool {
	return r.Event != nil
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == rejectedOutcome || r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
