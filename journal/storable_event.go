package journal

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrEmptyEventType      = errors.New("event type must not be empty")
	ErrInvalidPayloadJSON  = errors.New("payload json is not valid")
	ErrInvalidMetadataJSON = errors.New("metadata json is not valid")
)

// SequenceNumber is the position of an event in the journal. The first event gets 1, 0 means "nothing yet".
type SequenceNumber = uint64

// StorableEvents is an alias type for a slice of StorableEvent.
type StorableEvents = []StorableEvent

// StorableEvent is the DTO a journal appends and loads.
//
// While its properties are exported, it should only be constructed with BuildStorableEvent.
// SequenceNumber is zero until the event has been loaded back from a journal.
type StorableEvent struct {
	SequenceNumber SequenceNumber
	EventType      string
	OccurredAt     int64
	RecordedAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
}

// BuildStorableEvent validates its input and builds a StorableEvent.
// occurredAt is the registry height, recordedAt the wall clock time of recording,
// normalized to UTC with millisecond precision.
func BuildStorableEvent(
	eventType string,
	occurredAt int64,
	recordedAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (StorableEvent, error) {

	if eventType == "" {
		return StorableEvent{}, ErrEmptyEventType
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StorableEvent{}, ErrInvalidPayloadJSON
	}

	if !jsoniter.ConfigFastest.Valid(metadataJSON) {
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		EventType:    eventType,
		OccurredAt:   occurredAt,
		RecordedAt:   ToRecordedAt(recordedAt),
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// WithSequenceNumber returns a copy of e positioned at seq.
func (e StorableEvent) WithSequenceNumber(seq SequenceNumber) StorableEvent {
	e.SequenceNumber = seq
	return e
}

// ToRecordedAt normalizes t the way journals store it.
func ToRecordedAt(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
