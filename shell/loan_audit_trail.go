package shell

import (
	"context"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

// EventQuerier selects journal events by filter.
type EventQuerier interface {
	Query(ctx context.Context, filter journal.Filter) (journal.StorableEvents, error)
}

// LoanEventsFilter matches the loan lifecycle events of one loan key.
func LoanEventsFilter(key loanregistry.LoanKey) journal.Filter {
	return journal.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			loanregistry.LoanStartedEventType,
			loanregistry.AccessDeniedEventType,
			loanregistry.LoanExtendedEventType,
			loanregistry.LoanEndedEventType,
		).
		AllPredicatesOf(
			journal.P("ResourceID", key.ResourceID),
			journal.P("Borrower", string(key.Borrower)),
		).
		Finalize()
}

// LoanAuditTrail returns every recorded event of one loan key, oldest first.
// Unlike Registry.History it is not capped and spans ended loans.
func LoanAuditTrail(ctx context.Context, q EventQuerier, key loanregistry.LoanKey) (loanregistry.DomainEvents, error) {
	storableEvents, err := q.Query(ctx, LoanEventsFilter(key))
	if err != nil {
		return nil, err
	}

	return DomainEventsFrom(storableEvents)
}
