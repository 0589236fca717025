package loanregistry

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents something that happened to the registry. Applying the
// events of a registry in order to a fresh State reproduces its current state.
type DomainEvent interface {
	// IsEventType returns the string identifier for this event type.
	IsEventType() string

	// HasOccurredAt returns the height at which this event occurred.
	HasOccurredAt() Height

	// IsErrorEvent returns true if this event represents a rejected operation.
	IsErrorEvent() bool
}

// LoanEvent is a DomainEvent that concerns exactly one loan key.
type LoanEvent interface {
	DomainEvent
	ForLoanKey() LoanKey
}
