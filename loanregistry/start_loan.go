package loanregistry

import "context"

// StartLoanCommandType is the command type identifier.
const StartLoanCommandType = "StartLoan"

// StartLoan lends a resource to a borrower for a paid, time-boxed window.
type StartLoan struct {
	Caller     Identity
	ResourceID ResourceID
	Borrower   Identity
	Duration   Blocks
	AccessKey  []byte
	AmountPaid Amount
}

// BuildStartLoan creates a StartLoan command.
func BuildStartLoan(
	caller Identity,
	resourceID ResourceID,
	borrower Identity,
	duration Blocks,
	accessKey []byte,
	amountPaid Amount,
) StartLoan {

	return StartLoan{
		Caller:     caller,
		ResourceID: resourceID,
		Borrower:   borrower,
		Duration:   duration,
		AccessKey:  accessKey,
		AmountPaid: amountPaid,
	}
}

// CommandType returns the command type identifier.
func (c StartLoan) CommandType() string {
	return StartLoanCommandType
}

// CallerIdentity returns the identity that issued the command.
func (c StartLoan) CallerIdentity() Identity {
	return c.Caller
}

// LoanKey returns the key of the loan to start.
func (c StartLoan) LoanKey() LoanKey {
	return BuildLoanKey(c.ResourceID, c.Borrower)
}

// StartLoan starts a loan and returns its id.
func (r *Registry) StartLoan(ctx context.Context, command StartLoan) (LoanID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.execute(ctx, command, func(ctx context.Context, state *State, height Height) DecisionResult {
		return r.decideStartLoan(ctx, state, command, height)
	})
	if err != nil {
		return 0, err
	}

	started, _ := result.Event.(LoanStarted)

	return started.LoanID, nil
}

// decideStartLoan implements the business rules for starting a loan.
// The checks run in a fixed order and the first failing one wins.
// The payment is taken last, so a declined check never charges the caller.
//
// GIVEN: the registry state at the current height
// WHEN: the caller asks to lend a resource to a borrower
// THEN: LoanStarted with the next loan id, or a rejection without any state change.
func (r *Registry) decideStartLoan(ctx context.Context, state *State, command StartLoan, height Height) DecisionResult {
	if command.Caller != r.issuer {
		return RejectDecision(ErrCallerNotIssuer)
	}

	if !state.Config().isValidDuration(command.Duration) {
		return RejectDecision(ErrInvalidDuration)
	}

	if len(command.AccessKey) == 0 {
		return RejectDecision(ErrInvalidKey)
	}

	if command.AmountPaid <= 0 {
		return RejectDecision(ErrInvalidPayment)
	}

	if _, owned := r.resources.GetOwner(ctx, command.ResourceID); !owned {
		return RejectDecision(ErrResourceNotFound)
	}

	if _, exists := state.loans[command.LoanKey()]; exists {
		return RejectDecision(ErrLoanAlreadyActive)
	}

	if !r.payments.ProcessPayment(ctx, command.AmountPaid, command.Caller) {
		return RejectDecision(ErrPaymentFailed)
	}

	return SuccessDecision(
		BuildLoanStarted(
			state.LoanCounter(),
			command.LoanKey(),
			command.Duration,
			command.AccessKey,
			command.AmountPaid,
			height,
		),
	)
}
