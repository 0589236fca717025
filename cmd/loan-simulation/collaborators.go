package main

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

// PaymentGateway approves payments, except for a configured share it declines.
type PaymentGateway struct {
	declinePercent float64
	roll           func() float64 // in [0, 100)

	approved atomic.Int64
	declined atomic.Int64
}

func NewPaymentGateway(declinePercent float64) *PaymentGateway {
	return &PaymentGateway{
		declinePercent: declinePercent,
		roll:           func() float64 { return rand.Float64() * 100 },
	}
}

func (g *PaymentGateway) ProcessPayment(_ context.Context, amount loanregistry.Amount, _ loanregistry.Identity) bool {
	if amount < 0 || g.roll() < g.declinePercent {
		g.declined.Add(1)
		return false
	}

	g.approved.Add(1)

	return true
}

// ResourceCatalog owns the resource ids 1..size, all held by one owner.
type ResourceCatalog struct {
	owner loanregistry.Identity
	size  int
}

func NewResourceCatalog(owner loanregistry.Identity, size int) ResourceCatalog {
	return ResourceCatalog{owner: owner, size: size}
}

func (c ResourceCatalog) GetOwner(_ context.Context, resourceID loanregistry.ResourceID) (loanregistry.Identity, bool) {
	if resourceID < 1 || resourceID > loanregistry.ResourceID(c.size) { //nolint:gosec // size is validated positive
		return "", false
	}

	return c.owner, true
}

// tickClock advances clock by blocks every interval until ctx is done.
func tickClock(ctx context.Context, clock *loanregistry.ManualClock, interval time.Duration, blocks loanregistry.Blocks) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clock.Advance(blocks)
		}
	}
}

// lastKnownHeight returns the highest height found in an exported registry state,
// so a resumed simulation never moves the clock backwards.
func lastKnownHeight(snapshot loanregistry.StateSnapshot) loanregistry.Height {
	var height loanregistry.Height

	for _, record := range snapshot.Loans {
		height = max(height, record.Loan.StartTime)
	}

	for _, record := range snapshot.Histories {
		if latest, ok := record.Entries.Latest(); ok {
			height = max(height, latest.Timestamp)
		}
	}

	return height
}
