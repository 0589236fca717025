package loanregistry

// LoanExtendedEventType is the event type identifier.
const LoanExtendedEventType = "LoanExtended"

// LoanExtended represents the single paid extension of a loan window.
type LoanExtended struct {
	ResourceID         ResourceID
	Borrower           Identity
	AdditionalDuration Blocks
	FeePaid            Amount
	OccurredAt         Height
}

// BuildLoanExtended creates a new LoanExtended event.
func BuildLoanExtended(key LoanKey, additionalDuration Blocks, feePaid Amount, occurredAt Height) LoanExtended {
	return LoanExtended{
		ResourceID:         key.ResourceID,
		Borrower:           key.Borrower,
		AdditionalDuration: additionalDuration,
		FeePaid:            feePaid,
		OccurredAt:         occurredAt,
	}
}

// IsEventType returns the event type identifier.
func (e LoanExtended) IsEventType() string {
	return LoanExtendedEventType
}

// HasOccurredAt returns the height at which the loan was extended.
func (e LoanExtended) HasOccurredAt() Height {
	return e.OccurredAt
}

// IsErrorEvent returns false since this event represents a successful operation.
func (e LoanExtended) IsErrorEvent() bool {
	return false
}

// ForLoanKey returns the key of the extended loan.
func (e LoanExtended) ForLoanKey() LoanKey {
	return BuildLoanKey(e.ResourceID, e.Borrower)
}
