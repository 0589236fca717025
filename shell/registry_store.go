package shell

import (
	"context"
	"errors"
	"slices"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

var (
	ErrRehydratingStateFailed = errors.New("rehydrating registry state failed")
	ErrEncodingSnapshotFailed = errors.New("encoding registry snapshot failed")
	ErrDecodingSnapshotFailed = errors.New("decoding registry snapshot failed")
)

// DefaultSnapshotName is the snapshot a registry is stored under unless told otherwise.
const DefaultSnapshotName = "loan-registry"

// Collaborators are the injected capabilities of a Registry.
type Collaborators struct {
	Issuer    loanregistry.Identity
	Payments  loanregistry.PaymentAuthority
	Resources loanregistry.ResourceOwnership
	Clock     loanregistry.Clock
}

// RehydrateState folds the snapshot stored under snapshotName (if any) and all events
// after it into a State. It returns the sequence number of the last folded event.
func RehydrateState(
	ctx context.Context,
	j EventJournal,
	snapshotName string,
) (loanregistry.State, journal.SequenceNumber, error) {

	state := loanregistry.NewState()
	var after journal.SequenceNumber

	snapshot, err := j.LoadSnapshot(ctx, snapshotName)
	switch {
	case errors.Is(err, journal.ErrSnapshotNotFound):
		// nothing to start from, replay everything
	case err != nil:
		return loanregistry.State{}, 0, errors.Join(ErrRehydratingStateFailed, err)
	default:
		exported := new(loanregistry.StateSnapshot)
		if err := jsoniter.ConfigFastest.Unmarshal(snapshot.Data, exported); err != nil {
			return loanregistry.State{}, 0, errors.Join(ErrRehydratingStateFailed, ErrDecodingSnapshotFailed, err)
		}

		state = loanregistry.RestoreState(*exported)
		after = snapshot.SequenceNumber
	}

	storableEvents, last, err := j.Load(ctx, after)
	if err != nil {
		return loanregistry.State{}, 0, errors.Join(ErrRehydratingStateFailed, err)
	}

	domainEvents, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return loanregistry.State{}, 0, errors.Join(ErrRehydratingStateFailed, err)
	}

	state.ApplyAll(domainEvents)

	return state, last, nil
}

// OpenRegistry rehydrates a Registry from j and wires a JournalRecorder into it,
// so every further state change is appended to j before it is applied.
func OpenRegistry(
	ctx context.Context,
	j EventJournal,
	snapshotName string,
	collaborators Collaborators,
	options ...loanregistry.Option,
) (*loanregistry.Registry, *JournalRecorder, error) {

	state, last, err := RehydrateState(ctx, j, snapshotName)
	if err != nil {
		return nil, nil, err
	}

	recorder := NewJournalRecorder(j, last)

	registry, err := loanregistry.NewRegistry(
		collaborators.Issuer,
		collaborators.Payments,
		collaborators.Resources,
		collaborators.Clock,
		append(slices.Clone(options), loanregistry.WithState(state), loanregistry.WithEventRecorder(recorder))...,
	)
	if err != nil {
		return nil, nil, err
	}

	return registry, recorder, nil
}

// SaveSnapshot stores the registry state together with the journal position it reflects.
func SaveSnapshot(
	ctx context.Context,
	j EventJournal,
	snapshotName string,
	registry *loanregistry.Registry,
	recorder *JournalRecorder,
) (journal.Snapshot, error) {

	var seq journal.SequenceNumber
	exported := registry.SnapshotWith(func() { seq = recorder.LastSequenceNumber() })

	data, err := jsoniter.ConfigFastest.Marshal(exported)
	if err != nil {
		return journal.Snapshot{}, errors.Join(ErrEncodingSnapshotFailed, err)
	}

	snapshot, err := journal.BuildSnapshot(snapshotName, seq, data)
	if err != nil {
		return journal.Snapshot{}, errors.Join(ErrEncodingSnapshotFailed, err)
	}

	if err := j.SaveSnapshot(ctx, snapshot); err != nil {
		return journal.Snapshot{}, err
	}

	return snapshot, nil
}
