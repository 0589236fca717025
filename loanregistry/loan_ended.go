package loanregistry

// LoanEndedEventType is the event type identifier.
const LoanEndedEventType = "LoanEnded"

// LoanEnded represents when a loan was removed, either by the issuer or after its window elapsed.
type LoanEnded struct {
	ResourceID ResourceID
	Borrower   Identity
	EndedBy    Identity
	OccurredAt Height
}

// BuildLoanEnded creates a new LoanEnded event.
func BuildLoanEnded(key LoanKey, endedBy Identity, occurredAt Height) LoanEnded {
	return LoanEnded{
		ResourceID: key.ResourceID,
		Borrower:   key.Borrower,
		EndedBy:    endedBy,
		OccurredAt: occurredAt,
	}
}

// IsEventType returns the event type identifier.
func (e LoanEnded) IsEventType() string {
	return LoanEndedEventType
}

// HasOccurredAt returns the height at which the loan ended.
func (e LoanEnded) HasOccurredAt() Height {
	return e.OccurredAt
}

// IsErrorEvent returns false since this event represents a successful operation.
func (e LoanEnded) IsErrorEvent() bool {
	return false
}

// ForLoanKey returns the key of the ended loan.
func (e LoanEnded) ForLoanKey() LoanKey {
	return BuildLoanKey(e.ResourceID, e.Borrower)
}
