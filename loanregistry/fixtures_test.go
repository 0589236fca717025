package loanregistry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry/mocks"
)

const (
	issuer    loanregistry.Identity   = "ST1LIBRARY"
	borrower  loanregistry.Identity   = "ST2BORROWER"
	stranger  loanregistry.Identity   = "ST3STRANGER"
	authority loanregistry.Identity   = "ST4AUTHORITY"
	resource  loanregistry.ResourceID = 1

	startHeight loanregistry.Height = 0
	loanBlocks  loanregistry.Blocks = 1440
	paid        loanregistry.Amount = 500
)

var accessKey = bytes.Repeat([]byte("a"), 32)

type fixture struct {
	payments  *mocks.MockPaymentAuthority
	resources *mocks.MockResourceOwnership
	clock     *loanregistry.ManualClock
	registry  *loanregistry.Registry
}

func newFixture(t *testing.T, options ...loanregistry.Option) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		payments:  mocks.NewMockPaymentAuthority(ctrl),
		resources: mocks.NewMockResourceOwnership(ctrl),
		clock:     loanregistry.NewManualClock(startHeight),
	}

	registry, err := loanregistry.NewRegistry(issuer, f.payments, f.resources, f.clock, options...)
	require.NoError(t, err)
	f.registry = registry

	return f
}

func (f *fixture) givenResourceOwned(resourceID loanregistry.ResourceID) {
	f.resources.EXPECT().GetOwner(gomock.Any(), resourceID).Return(issuer, true).AnyTimes()
}

func (f *fixture) givenResourceUnknown(resourceID loanregistry.ResourceID) {
	f.resources.EXPECT().GetOwner(gomock.Any(), resourceID).Return(loanregistry.Identity(""), false).AnyTimes()
}

func (f *fixture) givenPayment(amount loanregistry.Amount, approved bool) *gomock.Call {
	return f.payments.EXPECT().ProcessPayment(gomock.Any(), amount, issuer).Return(approved)
}

func (f *fixture) givenLoanStarted(t *testing.T, resourceID loanregistry.ResourceID, b loanregistry.Identity) loanregistry.LoanID {
	t.Helper()

	f.givenResourceOwned(resourceID)
	f.givenPayment(paid, true)

	loanID, err := f.registry.StartLoan(
		context.Background(),
		loanregistry.BuildStartLoan(issuer, resourceID, b, loanBlocks, accessKey, paid),
	)
	require.NoError(t, err)

	return loanID
}

func (f *fixture) givenAuthority(t *testing.T) {
	t.Helper()

	err := f.registry.SetAuthorityContract(
		context.Background(),
		loanregistry.BuildSetAuthorityContract(stranger, authority),
	)
	require.NoError(t, err)
}

func (f *fixture) at(t *testing.T, height loanregistry.Height) {
	t.Helper()

	require.NoError(t, f.clock.Set(height))
}

func key() loanregistry.LoanKey {
	return loanregistry.BuildLoanKey(resource, borrower)
}
