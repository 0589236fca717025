// Package loanregistry implements a timed-access loan registry: an issuer grants
// time-boxed access to a resource (e.g. a digital textbook) in exchange for payment,
// and access lapses once the loan window has passed.
//
// The Registry is the only place where authorization, validation and timing rules
// meet. Everything around it is injected:
//   - PaymentAuthority: approves or declines a payment
//   - ResourceOwnership: tells whether a resource identifier is a valid, owned asset
//   - Clock: supplies the current height, advanced by the host and never by the registry
//   - EventRecorder (optional): persists every state change before it is applied
//
// All state lives in a State aggregate which is only ever mutated by applying
// domain events (LoanStarted, AccessDenied, LoanEnded, LoanExtended and the
// configuration events). This keeps the registry fully reconstructable from its
// event history.
//
// Common usage pattern:
//
//	registry, err := loanregistry.NewRegistry(issuer, payments, resources, clock,
//		loanregistry.WithLogger(slog.Default()))
//	if err != nil {
//		// handle error
//	}
//
//	loanID, err := registry.StartLoan(ctx,
//		loanregistry.BuildStartLoan(issuer, 1, borrower, 1440, accessKey, 500))
//
//	key, err := registry.CheckAccess(ctx, loanregistry.BuildCheckAccess(borrower, 1, borrower))
//	if errors.Is(err, loanregistry.ErrLoanExpired) {
//		// access lapsed
//	}
package loanregistry
