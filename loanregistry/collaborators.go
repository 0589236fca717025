package loanregistry

import "context"

//go:generate mockgen -source=collaborators.go -destination=mocks/collaborators_mock.go -package=mocks

// PaymentAuthority approves or declines a payment of amount from payer.
// Implementations must not block indefinitely; the registry holds its lock while waiting.
type PaymentAuthority interface {
	ProcessPayment(ctx context.Context, amount Amount, payer Identity) bool
}

// ResourceOwnership resolves whether a resource identifier denotes a valid, owned asset.
type ResourceOwnership interface {
	GetOwner(ctx context.Context, resourceID ResourceID) (Identity, bool)
}

// Clock supplies the current height. The registry only reads it.
type Clock interface {
	CurrentHeight() Height
}

// EventRecorder persists an event before the registry applies it to its state.
// A returned error aborts the operation and leaves the state unchanged.
// Payments are processed while deciding, before Record runs: if StartLoan or ExtendLoan
// fail with ErrRecordingEventFailed, the PaymentAuthority has already charged the caller
// and the host may need to refund it.
type EventRecorder interface {
	Record(ctx context.Context, caller Identity, commandType string, event DomainEvent) error
}
