package loanregistry

// AccessDeniedEventType is the event type identifier.
const AccessDeniedEventType = "AccessDenied"

// AccessDenied represents an access check against a loan whose window has passed.
// It is the only rejected operation that leaves a trace in the registry.
type AccessDenied struct {
	ResourceID  ResourceID
	Borrower    Identity
	FailureInfo string
	OccurredAt  Height
}

// BuildAccessDenied creates a new AccessDenied event.
func BuildAccessDenied(key LoanKey, failureInfo string, occurredAt Height) AccessDenied {
	return AccessDenied{
		ResourceID:  key.ResourceID,
		Borrower:    key.Borrower,
		FailureInfo: failureInfo,
		OccurredAt:  occurredAt,
	}
}

// IsEventType returns the event type identifier.
func (e AccessDenied) IsEventType() string {
	return AccessDeniedEventType
}

// HasOccurredAt returns the height of the denied check.
func (e AccessDenied) HasOccurredAt() Height {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e AccessDenied) IsErrorEvent() bool {
	return true
}

// ForLoanKey returns the key of the checked loan.
func (e AccessDenied) ForLoanKey() LoanKey {
	return BuildLoanKey(e.ResourceID, e.Borrower)
}
