package loanregistry

import (
	"fmt"
	"math"
	"slices"
)

// Identity is an opaque principal, e.g. a ledger account or a contract address.
type Identity string

// BurnIdentity is the reserved null principal. It can never become the authority contract.
const BurnIdentity Identity = "SP000000000000000000002Q6VF78"

// ResourceID identifies a lendable resource.
type ResourceID = uint64

// Height is the monotonically non-decreasing time unit driving expiry.
type Height = int64

// Blocks is a window length measured in height units.
type Blocks = int64

// Amount is a payment amount in the smallest unit of the payment authority.
type Amount = int64

// LoanID is allocated from the loan counter on every successful loan start.
type LoanID = uint64

const (
	// DefaultMaxLoanDuration is the initial upper bound for loan durations and extensions.
	DefaultMaxLoanDuration Blocks = 43200

	// DefaultExtensionFee is the initial fee charged per extension.
	DefaultExtensionFee Amount = 1000
)

// LoanKey is the composite key of a Loan: one resource lent to one borrower.
type LoanKey struct {
	ResourceID ResourceID
	Borrower   Identity
}

// BuildLoanKey creates a LoanKey.
func BuildLoanKey(resourceID ResourceID, borrower Identity) LoanKey {
	return LoanKey{ResourceID: resourceID, Borrower: borrower}
}

// String is meant for logs and span attributes, it is not parsed anywhere.
func (k LoanKey) String() string {
	return fmt.Sprintf("%d/%s", k.ResourceID, k.Borrower)
}

// Loan is a time-boxed access grant.
type Loan struct {
	ID         LoanID
	StartTime  Height
	Duration   Blocks
	AccessKey  []byte
	Extended   bool
	AmountPaid Amount
}

// ExpiresAt returns the last height at which the loan still grants access.
// Windows reaching past the height range end at math.MaxInt64.
func (l Loan) ExpiresAt() Height {
	return addBlocks(l.StartTime, l.Duration)
}

// IsExpiredAt reports whether the loan window lies strictly in the past at the given height.
func (l Loan) IsExpiredAt(height Height) bool {
	return height > l.ExpiresAt()
}

// hasElapsedAt reports whether the loan window is used up, which is one height earlier
// than IsExpiredAt. Anybody may end a loan from this height on.
func (l Loan) hasElapsedAt(height Height) bool {
	return height >= l.ExpiresAt()
}

// addBlocks adds a non-negative number of blocks, saturating at math.MaxInt64.
func addBlocks(height Height, blocks Blocks) Height {
	if blocks > 0 && height > math.MaxInt64-blocks {
		return math.MaxInt64
	}

	return height + blocks
}

func (l Loan) clone() Loan {
	l.AccessKey = slices.Clone(l.AccessKey)
	return l
}

// Config holds the registry parameters, amended by the authority contract.
type Config struct {
	MaxLoanDuration   Blocks
	ExtensionFee      Amount
	AuthorityContract Identity
}

// DefaultConfig returns the configuration a fresh registry starts with.
func DefaultConfig() Config {
	return Config{
		MaxLoanDuration: DefaultMaxLoanDuration,
		ExtensionFee:    DefaultExtensionFee,
	}
}

// HasAuthority reports whether the one-shot authority contract has been set.
func (c Config) HasAuthority() bool {
	return c.AuthorityContract != ""
}

func (c Config) isValidDuration(d Blocks) bool {
	return d > 0 && d <= c.MaxLoanDuration
}
