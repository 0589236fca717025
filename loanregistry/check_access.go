package loanregistry

import (
	"context"
	"fmt"
)

// CheckAccessCommandType is the command type identifier.
const CheckAccessCommandType = "CheckAccess"

// CheckAccess asks for the access key of a loan.
type CheckAccess struct {
	Caller     Identity
	ResourceID ResourceID
	Borrower   Identity
}

// BuildCheckAccess creates a CheckAccess command.
func BuildCheckAccess(caller Identity, resourceID ResourceID, borrower Identity) CheckAccess {
	return CheckAccess{Caller: caller, ResourceID: resourceID, Borrower: borrower}
}

// CommandType returns the command type identifier.
func (c CheckAccess) CommandType() string {
	return CheckAccessCommandType
}

// CallerIdentity returns the identity that issued the command.
func (c CheckAccess) CallerIdentity() Identity {
	return c.Caller
}

// LoanKey returns the key of the checked loan.
func (c CheckAccess) LoanKey() LoanKey {
	return BuildLoanKey(c.ResourceID, c.Borrower)
}

// CheckAccess returns a copy of the access key of an unexpired loan.
// Checking an expired loan fails with ErrLoanExpired and adds an access-denied entry
// to the loan's history. The expired loan itself stays in place until somebody ends it.
func (r *Registry) CheckAccess(ctx context.Context, command CheckAccess) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var accessKey []byte

	_, err := r.execute(ctx, command, func(_ context.Context, state *State, height Height) DecisionResult {
		loan, found := state.Loan(command.LoanKey())
		result := decideCheckAccess(loan, found, command, height)
		if result.HasError() == nil {
			accessKey = loan.AccessKey
		}

		return result
	})
	if err != nil {
		return nil, err
	}

	return accessKey, nil
}

// decideCheckAccess implements the business rules for an access check.
//
// GIVEN: the loan stored under the command's key, if any
// WHEN: somebody checks access at the current height
// THEN: no event when the window is still open, AccessDenied once it has passed.
func decideCheckAccess(loan Loan, found bool, command CheckAccess, height Height) DecisionResult {
	if !found {
		return RejectDecision(ErrLoanNotFound)
	}

	if loan.IsExpiredAt(height) {
		return ErrorDecision(
			BuildAccessDenied(
				command.LoanKey(),
				fmt.Sprintf("loan expired at height %d", loan.ExpiresAt()),
				height,
			),
			ErrLoanExpired,
		)
	}

	return ReadOnlyDecision()
}
