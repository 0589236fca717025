package loanregistry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

func Test_ExtendLoan_Success(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenLoanStarted(t, resource, borrower)
	f.givenPayment(loanregistry.DefaultExtensionFee, true).Times(1)

	// act
	err := f.registry.ExtendLoan(context.Background(), loanregistry.BuildExtendLoan(issuer, resource, borrower, 720))

	// assert
	require.NoError(t, err)

	loan, found := f.registry.Loan(key())
	require.True(t, found)
	assert.Equal(t, loanregistry.Blocks(2160), loan.Duration)
	assert.Equal(t, loanregistry.Amount(1500), loan.AmountPaid)
	assert.True(t, loan.Extended)
	assert.Equal(t, startHeight, loan.StartTime, "start time never changes")
	assert.Equal(t, accessKey, loan.AccessKey)

	history := f.registry.History(key())
	require.Len(t, history, 2)
	assert.Equal(t, loanregistry.HistoryEntry{Timestamp: startHeight, Action: loanregistry.ActionExtendLoan, Success: true}, history[0])
}

func Test_ExtendLoan_Success_AtTheLastValidHeight(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenLoanStarted(t, resource, borrower)
	f.givenPayment(loanregistry.DefaultExtensionFee, true).Times(1)
	f.at(t, startHeight+loanBlocks)

	// act
	err := f.registry.ExtendLoan(context.Background(), loanregistry.BuildExtendLoan(issuer, resource, borrower, 10))

	// assert
	require.NoError(t, err)
	key, err := f.registry.CheckAccess(context.Background(), loanregistry.BuildCheckAccess(borrower, resource, borrower))
	require.NoError(t, err)
	assert.Equal(t, accessKey, key)
}

func Test_ExtendLoan_Fails_WhenAlreadyExtended(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenLoanStarted(t, resource, borrower)
	f.givenPayment(loanregistry.DefaultExtensionFee, true).Times(1)
	require.NoError(t, f.registry.ExtendLoan(context.Background(), loanregistry.BuildExtendLoan(issuer, resource, borrower, 720)))

	// act
	err := f.registry.ExtendLoan(context.Background(), loanregistry.BuildExtendLoan(issuer, resource, borrower, 1))

	// assert
	require.ErrorIs(t, err, loanregistry.ErrAlreadyExtended)
	code, _ := loanregistry.CodeOf(err)
	assert.Equal(t, loanregistry.CodeAlreadyExtended, code)

	loan, _ := f.registry.Loan(key())
	assert.Equal(t, loanregistry.Blocks(2160), loan.Duration)
	assert.Len(t, f.registry.History(key()), 2)
}

//nolint:funlen
func Test_ExtendLoan_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, f *fixture)
		command     loanregistry.ExtendLoan
		expectedErr error
	}{
		{
			name:        "loan not found",
			setup:       func(*testing.T, *fixture) {},
			command:     loanregistry.BuildExtendLoan(stranger, resource, borrower, 0),
			expectedErr: loanregistry.ErrLoanNotFound,
		},
		{
			name:        "caller is not the issuer",
			setup:       func(t *testing.T, f *fixture) { f.givenLoanStarted(t, resource, borrower) },
			command:     loanregistry.BuildExtendLoan(borrower, resource, borrower, 720),
			expectedErr: loanregistry.ErrCallerNotIssuer,
		},
		{
			name:        "zero additional duration",
			setup:       func(t *testing.T, f *fixture) { f.givenLoanStarted(t, resource, borrower) },
			command:     loanregistry.BuildExtendLoan(issuer, resource, borrower, 0),
			expectedErr: loanregistry.ErrInvalidDuration,
		},
		{
			name:        "additional duration above maximum",
			setup:       func(t *testing.T, f *fixture) { f.givenLoanStarted(t, resource, borrower) },
			command:     loanregistry.BuildExtendLoan(issuer, resource, borrower, loanregistry.DefaultMaxLoanDuration+1),
			expectedErr: loanregistry.ErrInvalidDuration,
		},
		{
			name: "loan expired",
			setup: func(t *testing.T, f *fixture) {
				f.givenLoanStarted(t, resource, borrower)
				f.at(t, startHeight+loanBlocks+1)
			},
			command:     loanregistry.BuildExtendLoan(issuer, resource, borrower, 720),
			expectedErr: loanregistry.ErrLoanExpired,
		},
		{
			name: "fee payment declined",
			setup: func(t *testing.T, f *fixture) {
				f.givenLoanStarted(t, resource, borrower)
				f.givenPayment(loanregistry.DefaultExtensionFee, false).Times(1)
			},
			command:     loanregistry.BuildExtendLoan(issuer, resource, borrower, 720),
			expectedErr: loanregistry.ErrPaymentFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			f := newFixture(t)
			tt.setup(t, f)
			before, existed := f.registry.Loan(key())
			historyBefore := f.registry.History(key())

			// act
			err := f.registry.ExtendLoan(context.Background(), tt.command)

			// assert
			require.ErrorIs(t, err, tt.expectedErr)

			after, exists := f.registry.Loan(key())
			assert.Equal(t, existed, exists)
			assert.Equal(t, before, after)
			assert.Equal(t, historyBefore, f.registry.History(key()))
		})
	}
}

func Test_ExtendLoan_ChargesTheConfiguredFee(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenAuthority(t)
	require.NoError(t, f.registry.SetExtensionFee(context.Background(), loanregistry.BuildSetExtensionFee(authority, 250)))
	f.givenLoanStarted(t, resource, borrower)
	f.givenPayment(250, true).Times(1)

	// act
	err := f.registry.ExtendLoan(context.Background(), loanregistry.BuildExtendLoan(issuer, resource, borrower, 100))

	// assert
	require.NoError(t, err)
	loan, _ := f.registry.Loan(key())
	assert.Equal(t, paid+250, loan.AmountPaid)
}
