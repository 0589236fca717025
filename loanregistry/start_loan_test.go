package loanregistry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

func Test_StartLoan_Success(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenResourceOwned(resource)
	f.givenPayment(paid, true).Times(1)

	// act
	loanID, err := f.registry.StartLoan(
		context.Background(),
		loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, accessKey, paid),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, loanregistry.LoanID(0), loanID)
	assert.Equal(t, loanregistry.LoanID(1), f.registry.LoanCounter())

	loan, found := f.registry.Loan(key())
	require.True(t, found)
	assert.Equal(t, startHeight, loan.StartTime)
	assert.Equal(t, loanBlocks, loan.Duration)
	assert.Equal(t, accessKey, loan.AccessKey)
	assert.False(t, loan.Extended)
	assert.Equal(t, paid, loan.AmountPaid)

	assert.Equal(
		t,
		loanregistry.History{{Timestamp: startHeight, Action: loanregistry.ActionStartLoan, Success: true}},
		f.registry.History(key()),
	)
}

func Test_StartLoan_AllocatesConsecutiveIDs(t *testing.T) {
	// arrange
	f := newFixture(t)
	first := f.givenLoanStarted(t, resource, borrower)

	// act
	second := f.givenLoanStarted(t, 2, borrower)
	third := f.givenLoanStarted(t, resource, stranger)

	// assert
	assert.Equal(t, loanregistry.LoanID(0), first)
	assert.Equal(t, loanregistry.LoanID(1), second)
	assert.Equal(t, loanregistry.LoanID(2), third)
	assert.Equal(t, loanregistry.LoanID(3), f.registry.LoanCounter())
}

//nolint:funlen
func Test_StartLoan_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(f *fixture)
		command      loanregistry.StartLoan
		expectedErr  error
		expectedCode loanregistry.ErrorCode
	}{
		{
			name:         "caller is not the issuer",
			setup:        func(*fixture) {},
			command:      loanregistry.BuildStartLoan(stranger, resource, borrower, loanBlocks, accessKey, paid),
			expectedErr:  loanregistry.ErrCallerNotIssuer,
			expectedCode: loanregistry.CodeCallerNotIssuer,
		},
		{
			name:         "caller check precedes duration check",
			setup:        func(*fixture) {},
			command:      loanregistry.BuildStartLoan(stranger, resource, borrower, 0, nil, 0),
			expectedErr:  loanregistry.ErrNotAuthorized,
			expectedCode: loanregistry.CodeCallerNotIssuer,
		},
		{
			name:         "zero duration",
			setup:        func(*fixture) {},
			command:      loanregistry.BuildStartLoan(issuer, resource, borrower, 0, accessKey, paid),
			expectedErr:  loanregistry.ErrInvalidDuration,
			expectedCode: loanregistry.CodeInvalidDuration,
		},
		{
			name:         "negative duration",
			setup:        func(*fixture) {},
			command:      loanregistry.BuildStartLoan(issuer, resource, borrower, -5, accessKey, paid),
			expectedErr:  loanregistry.ErrInvalidDuration,
			expectedCode: loanregistry.CodeInvalidDuration,
		},
		{
			name:         "duration above maximum",
			setup:        func(*fixture) {},
			command:      loanregistry.BuildStartLoan(issuer, resource, borrower, loanregistry.DefaultMaxLoanDuration+1, accessKey, paid),
			expectedErr:  loanregistry.ErrInvalidDuration,
			expectedCode: loanregistry.CodeInvalidDuration,
		},
		{
			name:         "empty access key",
			setup:        func(*fixture) {},
			command:      loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, []byte{}, paid),
			expectedErr:  loanregistry.ErrInvalidKey,
			expectedCode: loanregistry.CodeInvalidKey,
		},
		{
			name:         "zero payment",
			setup:        func(*fixture) {},
			command:      loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, accessKey, 0),
			expectedErr:  loanregistry.ErrInvalidPayment,
			expectedCode: loanregistry.CodeInvalidAmount,
		},
		{
			name:         "unknown resource",
			setup:        func(f *fixture) { f.givenResourceUnknown(resource) },
			command:      loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, accessKey, paid),
			expectedErr:  loanregistry.ErrResourceNotFound,
			expectedCode: loanregistry.CodeResourceNotFound,
		},
		{
			name: "payment declined",
			setup: func(f *fixture) {
				f.givenResourceOwned(resource)
				f.givenPayment(paid, false).Times(1)
			},
			command:      loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, accessKey, paid),
			expectedErr:  loanregistry.ErrPaymentFailed,
			expectedCode: loanregistry.CodePaymentFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			f := newFixture(t)
			tt.setup(f)

			// act
			loanID, err := f.registry.StartLoan(context.Background(), tt.command)

			// assert
			require.ErrorIs(t, err, tt.expectedErr)
			code, ok := loanregistry.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, code)
			assert.Zero(t, loanID)

			_, found := f.registry.Loan(tt.command.LoanKey())
			assert.False(t, found)
			assert.Empty(t, f.registry.History(tt.command.LoanKey()))
			assert.Equal(t, loanregistry.LoanID(0), f.registry.LoanCounter())
		})
	}
}

func Test_StartLoan_Rejected_WhenLoanAlreadyActive(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenLoanStarted(t, resource, borrower)
	f.at(t, 10)

	// act
	_, err := f.registry.StartLoan(
		context.Background(),
		loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, []byte("other"), paid),
	)

	// assert
	assert.ErrorIs(t, err, loanregistry.ErrLoanAlreadyActive)

	loan, found := f.registry.Loan(key())
	require.True(t, found)
	assert.Equal(t, accessKey, loan.AccessKey)
	assert.Len(t, f.registry.History(key()), 1)
	assert.Equal(t, loanregistry.LoanID(1), f.registry.LoanCounter())
}

func Test_StartLoan_Rejected_WhenExpiredLoanWasNotEnded(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenLoanStarted(t, resource, borrower)
	f.at(t, startHeight+loanBlocks+100)

	// act
	_, err := f.registry.StartLoan(
		context.Background(),
		loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, accessKey, paid),
	)

	// assert
	assert.ErrorIs(t, err, loanregistry.ErrLoanAlreadyActive)
}

func Test_StartLoan_Success_AfterPreviousLoanEnded(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenLoanStarted(t, resource, borrower)
	require.NoError(t, f.registry.EndLoan(context.Background(), loanregistry.BuildEndLoan(issuer, resource, borrower)))

	// act
	loanID := f.givenLoanStarted(t, resource, borrower)

	// assert
	assert.Equal(t, loanregistry.LoanID(1), loanID)
	loan, found := f.registry.Loan(key())
	require.True(t, found)
	assert.Equal(t, loanID, loan.ID)
	assert.Len(t, f.registry.History(key()), 3)
}

func Test_StartLoan_DoesNotAliasCallerAccessKey(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenResourceOwned(resource)
	f.givenPayment(paid, true)
	callerKey := []byte("secret-key")

	_, err := f.registry.StartLoan(
		context.Background(),
		loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, callerKey, paid),
	)
	require.NoError(t, err)

	// act
	callerKey[0] = 'X'

	// assert
	loan, _ := f.registry.Loan(key())
	assert.Equal(t, []byte("secret-key"), loan.AccessKey)
}

func Test_StartLoan_ChargesTheCaller(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.givenResourceOwned(resource)
	f.payments.EXPECT().ProcessPayment(gomock.Any(), paid, issuer).Return(true).Times(1)

	// act
	_, err := f.registry.StartLoan(
		context.Background(),
		loanregistry.BuildStartLoan(issuer, resource, borrower, loanBlocks, accessKey, paid),
	)

	// assert
	assert.NoError(t, err)
}
