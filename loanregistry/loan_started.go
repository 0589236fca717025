package loanregistry

import "slices"

// LoanStartedEventType is the event type identifier.
const LoanStartedEventType = "LoanStarted"

// LoanStarted represents when the issuer lent a resource to a borrower.
type LoanStarted struct {
	LoanID     LoanID
	ResourceID ResourceID
	Borrower   Identity
	Duration   Blocks
	AccessKey  []byte
	AmountPaid Amount
	OccurredAt Height
}

// BuildLoanStarted creates a new LoanStarted event.
func BuildLoanStarted(
	loanID LoanID,
	key LoanKey,
	duration Blocks,
	accessKey []byte,
	amountPaid Amount,
	occurredAt Height,
) LoanStarted {

	event := LoanStarted{
		LoanID:     loanID,
		ResourceID: key.ResourceID,
		Borrower:   key.Borrower,
		Duration:   duration,
		AccessKey:  slices.Clone(accessKey),
		AmountPaid: amountPaid,
		OccurredAt: occurredAt,
	}

	return event
}

// IsEventType returns the event type identifier.
func (e LoanStarted) IsEventType() string {
	return LoanStartedEventType
}

// HasOccurredAt returns the height at which the loan started.
func (e LoanStarted) HasOccurredAt() Height {
	return e.OccurredAt
}

// IsErrorEvent returns false since this event represents a successful operation.
func (e LoanStarted) IsErrorEvent() bool {
	return false
}

// ForLoanKey returns the key of the started loan.
func (e LoanStarted) ForLoanKey() LoanKey {
	return BuildLoanKey(e.ResourceID, e.Borrower)
}
