package loanregistry

import "context"

// ExtendLoanCommandType is the command type identifier.
const ExtendLoanCommandType = "ExtendLoan"

// ExtendLoan prolongs the window of a loan once, against the extension fee.
type ExtendLoan struct {
	Caller             Identity
	ResourceID         ResourceID
	Borrower           Identity
	AdditionalDuration Blocks
}

// BuildExtendLoan creates an ExtendLoan command.
func BuildExtendLoan(caller Identity, resourceID ResourceID, borrower Identity, additionalDuration Blocks) ExtendLoan {
	return ExtendLoan{
		Caller:             caller,
		ResourceID:         resourceID,
		Borrower:           borrower,
		AdditionalDuration: additionalDuration,
	}
}

// CommandType returns the command type identifier.
func (c ExtendLoan) CommandType() string {
	return ExtendLoanCommandType
}

// CallerIdentity returns the identity that issued the command.
func (c ExtendLoan) CallerIdentity() Identity {
	return c.Caller
}

// LoanKey returns the key of the loan to extend.
func (c ExtendLoan) LoanKey() LoanKey {
	return BuildLoanKey(c.ResourceID, c.Borrower)
}

// ExtendLoan extends an unexpired loan once. The extension fee is charged to the caller.
func (r *Registry) ExtendLoan(ctx context.Context, command ExtendLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.execute(ctx, command, func(ctx context.Context, state *State, height Height) DecisionResult {
		return r.decideExtendLoan(ctx, state, command, height)
	})

	return err
}

// decideExtendLoan implements the business rules for extending a loan.
// A loan may still be extended at its last valid height, start+duration.
//
// GIVEN: the registry state at the current height
// WHEN: the caller asks to extend a loan
// THEN: LoanExtended after a successful payment of the extension fee, or a rejection.
func (r *Registry) decideExtendLoan(ctx context.Context, state *State, command ExtendLoan, height Height) DecisionResult {
	loan, found := state.Loan(command.LoanKey())
	if !found {
		return RejectDecision(ErrLoanNotFound)
	}

	if command.Caller != r.issuer {
		return RejectDecision(ErrCallerNotIssuer)
	}

	if loan.Extended {
		return RejectDecision(ErrAlreadyExtended)
	}

	config := state.Config()

	if !config.isValidDuration(command.AdditionalDuration) {
		return RejectDecision(ErrInvalidDuration)
	}

	if loan.IsExpiredAt(height) {
		return RejectDecision(ErrLoanExpired)
	}

	if !r.payments.ProcessPayment(ctx, config.ExtensionFee, command.Caller) {
		return RejectDecision(ErrPaymentFailed)
	}

	return SuccessDecision(
		BuildLoanExtended(command.LoanKey(), command.AdditionalDuration, config.ExtensionFee, height),
	)
}
