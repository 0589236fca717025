package loanregistry

import "context"

const (
	SetAuthorityContractCommandType = "SetAuthorityContract"
	SetMaxLoanDurationCommandType   = "SetMaxLoanDuration"
	SetExtensionFeeCommandType      = "SetExtensionFee"
)

// SetAuthorityContract designates the identity allowed to amend the configuration.
type SetAuthorityContract struct {
	Caller    Identity
	Authority Identity
}

// BuildSetAuthorityContract creates a SetAuthorityContract command.
func BuildSetAuthorityContract(caller Identity, authority Identity) SetAuthorityContract {
	return SetAuthorityContract{Caller: caller, Authority: authority}
}

func (c SetAuthorityContract) CommandType() string      { return SetAuthorityContractCommandType }
func (c SetAuthorityContract) CallerIdentity() Identity { return c.Caller }

// SetMaxLoanDuration changes the upper bound for loan durations and extensions.
type SetMaxLoanDuration struct {
	Caller          Identity
	MaxLoanDuration Blocks
}

// BuildSetMaxLoanDuration creates a SetMaxLoanDuration command.
func BuildSetMaxLoanDuration(caller Identity, maxLoanDuration Blocks) SetMaxLoanDuration {
	return SetMaxLoanDuration{Caller: caller, MaxLoanDuration: maxLoanDuration}
}

func (c SetMaxLoanDuration) CommandType() string      { return SetMaxLoanDurationCommandType }
func (c SetMaxLoanDuration) CallerIdentity() Identity { return c.Caller }

// SetExtensionFee changes the fee charged per extension.
type SetExtensionFee struct {
	Caller       Identity
	ExtensionFee Amount
}

// BuildSetExtensionFee creates a SetExtensionFee command.
func BuildSetExtensionFee(caller Identity, extensionFee Amount) SetExtensionFee {
	return SetExtensionFee{Caller: caller, ExtensionFee: extensionFee}
}

func (c SetExtensionFee) CommandType() string      { return SetExtensionFeeCommandType }
func (c SetExtensionFee) CallerIdentity() Identity { return c.Caller }

// SetAuthorityContract sets the one-shot authority contract. Anybody may call it once.
func (r *Registry) SetAuthorityContract(ctx context.Context, command SetAuthorityContract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.execute(ctx, command, func(_ context.Context, state *State, height Height) DecisionResult {
		return decideSetAuthorityContract(state.Config(), command, height)
	})

	return err
}

// SetMaxLoanDuration changes the maximum loan duration. Only the authority contract may call it.
func (r *Registry) SetMaxLoanDuration(ctx context.Context, command SetMaxLoanDuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.execute(ctx, command, func(_ context.Context, state *State, height Height) DecisionResult {
		return decideSetMaxLoanDuration(state.Config(), command, height)
	})

	return err
}

// SetExtensionFee changes the extension fee. Only the authority contract may call it.
func (r *Registry) SetExtensionFee(ctx context.Context, command SetExtensionFee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.execute(ctx, command, func(_ context.Context, state *State, height Height) DecisionResult {
		return decideSetExtensionFee(state.Config(), command, height)
	})

	return err
}

// decideSetAuthorityContract implements the business rules for the one-shot authority contract.
//
// GIVEN: the current configuration
// WHEN: someone sets the authority contract
// THEN: AuthorityContractSet unless an authority is already set or the burn identity is proposed.
func decideSetAuthorityContract(config Config, command SetAuthorityContract, height Height) DecisionResult {
	switch {
	case config.HasAuthority():
		return RejectDecision(ErrAuthorityAlreadySet)
	case command.Authority == "" || command.Authority == BurnIdentity:
		return RejectDecision(ErrReservedIdentity)
	}

	return SuccessDecision(BuildAuthorityContractSet(command.Authority, height))
}

// decideSetMaxLoanDuration validates the value before checking the caller's authority.
func decideSetMaxLoanDuration(config Config, command SetMaxLoanDuration, height Height) DecisionResult {
	if command.MaxLoanDuration <= 0 {
		return RejectDecision(ErrInvalidDuration)
	}

	if err := checkAuthority(config, command.Caller); err != nil {
		return RejectDecision(err)
	}

	return SuccessDecision(BuildMaxLoanDurationSet(command.MaxLoanDuration, height))
}

// decideSetExtensionFee validates the value before checking the caller's authority.
func decideSetExtensionFee(config Config, command SetExtensionFee, height Height) DecisionResult {
	if command.ExtensionFee < 0 {
		return RejectDecision(ErrInvalidFee)
	}

	if err := checkAuthority(config, command.Caller); err != nil {
		return RejectDecision(err)
	}

	return SuccessDecision(BuildExtensionFeeSet(command.ExtensionFee, height))
}

func checkAuthority(config Config, caller Identity) error {
	switch {
	case !config.HasAuthority():
		return ErrAuthorityNotSet
	case caller != config.AuthorityContract:
		return ErrCallerNotAuthority
	}

	return nil
}
