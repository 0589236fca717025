package journal

import (
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrInvalidSnapshotJSON = errors.New("snapshot json is not valid")
	ErrEmptySnapshotName   = errors.New("snapshot name must not be empty")
)

// Snapshot is a named, serialized state together with the sequence number of the
// last event folded into it. Loading the events after SequenceNumber brings it up to date.
type Snapshot struct {
	Name           string
	SequenceNumber SequenceNumber
	Data           json.RawMessage
	CreatedAt      time.Time
}

// Validate ensures the snapshot can be stored.
func (s Snapshot) Validate() error {
	if s.Name == "" {
		return ErrEmptySnapshotName
	}

	if !jsoniter.ConfigFastest.Valid(s.Data) {
		return ErrInvalidSnapshotJSON
	}

	return nil
}

// BuildSnapshot creates a validated Snapshot stamped with the current time.
func BuildSnapshot(name string, sequenceNumber SequenceNumber, data json.RawMessage) (Snapshot, error) {
	snapshot := Snapshot{
		Name:           name,
		SequenceNumber: sequenceNumber,
		Data:           data,
		CreatedAt:      ToRecordedAt(time.Now()),
	}

	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}
