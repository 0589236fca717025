package loanregistry

const (
	// AuthorityContractSetEventType is the event type identifier.
	AuthorityContractSetEventType = "AuthorityContractSet"

	// MaxLoanDurationSetEventType is the event type identifier.
	MaxLoanDurationSetEventType = "MaxLoanDurationSet"

	// ExtensionFeeSetEventType is the event type identifier.
	ExtensionFeeSetEventType = "ExtensionFeeSet"
)

// AuthorityContractSet represents when the one-shot authority contract was configured.
type AuthorityContractSet struct {
	Authority  Identity
	OccurredAt Height
}

// BuildAuthorityContractSet creates a new AuthorityContractSet event.
func BuildAuthorityContractSet(authority Identity, occurredAt Height) AuthorityContractSet {
	return AuthorityContractSet{Authority: authority, OccurredAt: occurredAt}
}

func (e AuthorityContractSet) IsEventType() string   { return AuthorityContractSetEventType }
func (e AuthorityContractSet) HasOccurredAt() Height { return e.OccurredAt }
func (e AuthorityContractSet) IsErrorEvent() bool    { return false }

// MaxLoanDurationSet represents when the authority changed the maximum loan duration.
type MaxLoanDurationSet struct {
	MaxLoanDuration Blocks
	OccurredAt      Height
}

// BuildMaxLoanDurationSet creates a new MaxLoanDurationSet event.
func BuildMaxLoanDurationSet(maxLoanDuration Blocks, occurredAt Height) MaxLoanDurationSet {
	return MaxLoanDurationSet{MaxLoanDuration: maxLoanDuration, OccurredAt: occurredAt}
}

func (e MaxLoanDurationSet) IsEventType() string   { return MaxLoanDurationSetEventType }
func (e MaxLoanDurationSet) HasOccurredAt() Height { return e.OccurredAt }
func (e MaxLoanDurationSet) IsErrorEvent() bool    { return false }

// ExtensionFeeSet represents when the authority changed the extension fee.
type ExtensionFeeSet struct {
	ExtensionFee Amount
	OccurredAt   Height
}

// BuildExtensionFeeSet creates a new ExtensionFeeSet event.
func BuildExtensionFeeSet(extensionFee Amount, occurredAt Height) ExtensionFeeSet {
	return ExtensionFeeSet{ExtensionFee: extensionFee, OccurredAt: occurredAt}
}

func (e ExtensionFeeSet) IsEventType() string   { return ExtensionFeeSetEventType }
func (e ExtensionFeeSet) HasOccurredAt() Height { return e.OccurredAt }
func (e ExtensionFeeSet) IsErrorEvent() bool    { return false }
