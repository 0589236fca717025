package loanregistry

import "errors"

// ErrorCode is the numeric code carried by every business rule violation.
type ErrorCode uint32

const (
	CodeNotAuthorized     ErrorCode = 100
	CodeLoanExpired       ErrorCode = 101
	CodeResourceNotFound  ErrorCode = 102
	CodeLoanAlreadyActive ErrorCode = 103
	CodeInvalidDuration   ErrorCode = 104
	CodeInvalidKey        ErrorCode = 105
	CodeLoanNotFound      ErrorCode = 106
	CodeCallerNotIssuer   ErrorCode = 107
	CodeInvalidAmount     ErrorCode = 110
	CodePaymentFailed     ErrorCode = 111
	CodeAlreadyExtended   ErrorCode = 114
)

// Error is a business rule violation. Errors of a narrower reason also match
// the broader kind they belong to, e.g. errors.Is(ErrCallerNotIssuer, ErrNotAuthorized).
type Error struct {
	code ErrorCode
	msg  string
	kind *Error
}

func newError(code ErrorCode, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func newNarrowError(kind *Error, code ErrorCode, reason string) *Error {
	return &Error{code: code, msg: kind.msg + ": " + reason, kind: kind}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// Code returns the numeric error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Is matches the broader kind of a narrower error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e.kind == nil {
		return false
	}

	return e.kind == t
}

var (
	ErrNotAuthorized       = newError(CodeNotAuthorized, "not authorized")
	ErrLoanExpired         = newError(CodeLoanExpired, "loan expired")
	ErrResourceNotFound    = newError(CodeResourceNotFound, "resource not found")
	ErrLoanAlreadyActive   = newError(CodeLoanAlreadyActive, "loan already active")
	ErrInvalidDuration     = newError(CodeInvalidDuration, "invalid duration")
	ErrInvalidKey          = newError(CodeInvalidKey, "invalid access key")
	ErrLoanNotFound        = newError(CodeLoanNotFound, "loan not found")
	ErrInvalidFee          = newError(CodeInvalidAmount, "invalid fee")
	ErrInvalidPayment      = newError(CodeInvalidAmount, "invalid payment amount")
	ErrPaymentFailed       = newError(CodePaymentFailed, "payment failed")
	ErrAlreadyExtended     = newError(CodeAlreadyExtended, "loan already extended")
	ErrCallerNotIssuer     = newNarrowError(ErrNotAuthorized, CodeCallerNotIssuer, "caller is not the issuer")
	ErrAuthorityAlreadySet = newNarrowError(ErrNotAuthorized, CodeNotAuthorized, "authority contract already set")
	ErrReservedIdentity    = newNarrowError(ErrNotAuthorized, CodeNotAuthorized, "reserved identity")
	ErrAuthorityNotSet     = newNarrowError(ErrNotAuthorized, CodeNotAuthorized, "authority contract not set")
	ErrCallerNotAuthority  = newNarrowError(ErrNotAuthorized, CodeNotAuthorized, "caller is not the authority contract")
	ErrLoanWindowOpen      = newNarrowError(ErrNotAuthorized, CodeNotAuthorized, "loan window has not elapsed")
)

var (
	ErrEmptyIssuer           = errors.New("issuer identity must not be empty")
	ErrNilPaymentAuthority   = errors.New("payment authority must not be nil")
	ErrNilResourceOwnership  = errors.New("resource ownership must not be nil")
	ErrNilClock              = errors.New("clock must not be nil")
	ErrNilRecorder           = errors.New("event recorder must not be nil")
	ErrRecordingEventFailed  = errors.New("recording event failed")
	ErrHeightMustNotDecrease = errors.New("height must not decrease")
)

// CodeOf extracts the ErrorCode of a business rule violation anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.code, true
	}

	return 0, false
}
