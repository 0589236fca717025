package shell

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

// EventJournal is what the shell needs from a journal engine.
type EventJournal interface {
	Append(ctx context.Context, expected journal.SequenceNumber, event journal.StorableEvent) (journal.SequenceNumber, error)
	Load(ctx context.Context, after journal.SequenceNumber) (journal.StorableEvents, journal.SequenceNumber, error)
	SaveSnapshot(ctx context.Context, snapshot journal.Snapshot) error
	LoadSnapshot(ctx context.Context, name string) (journal.Snapshot, error)
}

// JournalRecorder appends registry events to an EventJournal.
//
// It remembers the sequence number of the last event it appended and uses it as the
// expected position of the next append, so a second writer on the same journal makes
// the next Record fail with journal.ErrConcurrencyConflict instead of interleaving.
type JournalRecorder struct {
	journal EventJournal
	now     func() time.Time

	mu      sync.Mutex
	lastSeq journal.SequenceNumber
}

// NewJournalRecorder creates a recorder whose first append expects lastSeq as the
// journal's latest sequence number, i.e. the position up to which the registry was rehydrated.
func NewJournalRecorder(j EventJournal, lastSeq journal.SequenceNumber) *JournalRecorder {
	return &JournalRecorder{
		journal: j,
		now:     time.Now,
		lastSeq: lastSeq,
	}
}

// Record implements loanregistry.EventRecorder.
func (r *JournalRecorder) Record(
	ctx context.Context,
	caller loanregistry.Identity,
	commandType string,
	event loanregistry.DomainEvent,
) error {

	storableEvent, err := StorableEventFrom(event, metadataFor(ctx, caller, commandType), r.now())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seq, err := r.journal.Append(ctx, r.lastSeq, storableEvent)
	if err != nil {
		return err
	}

	r.lastSeq = seq

	return nil
}

// LastSequenceNumber returns the position of the last event this recorder appended or started from.
func (r *JournalRecorder) LastSequenceNumber() journal.SequenceNumber {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastSeq
}
