package loanregistry

import "context"

// EndLoanCommandType is the command type identifier.
const EndLoanCommandType = "EndLoan"

// EndLoan removes a loan.
type EndLoan struct {
	Caller     Identity
	ResourceID ResourceID
	Borrower   Identity
}

// BuildEndLoan creates an EndLoan command.
func BuildEndLoan(caller Identity, resourceID ResourceID, borrower Identity) EndLoan {
	return EndLoan{Caller: caller, ResourceID: resourceID, Borrower: borrower}
}

// CommandType returns the command type identifier.
func (c EndLoan) CommandType() string {
	return EndLoanCommandType
}

// CallerIdentity returns the identity that issued the command.
func (c EndLoan) CallerIdentity() Identity {
	return c.Caller
}

// LoanKey returns the key of the loan to end.
func (c EndLoan) LoanKey() LoanKey {
	return BuildLoanKey(c.ResourceID, c.Borrower)
}

// EndLoan removes a loan. The issuer may end a loan at any time, anybody else
// only once its window has elapsed. The loan's history is kept.
func (r *Registry) EndLoan(ctx context.Context, command EndLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.execute(ctx, command, func(_ context.Context, state *State, height Height) DecisionResult {
		loan, found := state.Loan(command.LoanKey())
		return decideEndLoan(loan, found, command, r.issuer, height)
	})

	return err
}

// decideEndLoan implements the business rules for ending a loan.
//
// GIVEN: the loan stored under the command's key, if any
// WHEN: the caller asks to end it at the current height
// THEN: LoanEnded if the caller is the issuer or the window has elapsed.
func decideEndLoan(loan Loan, found bool, command EndLoan, issuer Identity, height Height) DecisionResult {
	if !found {
		return RejectDecision(ErrLoanNotFound)
	}

	if command.Caller != issuer && !loan.hasElapsedAt(height) {
		return RejectDecision(ErrLoanWindowOpen)
	}

	return SuccessDecision(BuildLoanEnded(command.LoanKey(), command.Caller, height))
}
