package shell

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

var ErrMappingStorableEventFromDomainEvent = errors.New("mapping storable event from domain event failed")

func StorableEventFrom(
	event loanregistry.DomainEvent,
	metadata EventMetadata,
	recordedAt time.Time,
) (journal.StorableEvent, error) {

	payloadJSON, err := jsoniter.ConfigFastest.Marshal(event)
	if err != nil {
		return journal.StorableEvent{}, errors.Join(ErrMappingStorableEventFromDomainEvent, err)
	}

	metadataJSON, err := jsoniter.ConfigFastest.Marshal(metadata)
	if err != nil {
		return journal.StorableEvent{}, errors.Join(ErrMappingStorableEventFromDomainEvent, err)
	}

	storableEvent, err := journal.BuildStorableEvent(
		event.IsEventType(),
		event.HasOccurredAt(),
		recordedAt,
		payloadJSON,
		metadataJSON,
	)
	if err != nil {
		return journal.StorableEvent{}, errors.Join(ErrMappingStorableEventFromDomainEvent, err)
	}

	return storableEvent, nil
}
