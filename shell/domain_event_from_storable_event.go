package shell

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

var (
	ErrMappingDomainEventFromStorableEvent = errors.New("mapping domain event from storable event failed")
	ErrUnknownEventType                    = errors.New("unknown event type")
)

func DomainEventsFrom(storableEvents journal.StorableEvents) (loanregistry.DomainEvents, error) {
	domainEvents := make(loanregistry.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

func DomainEventFrom(storableEvent journal.StorableEvent) (loanregistry.DomainEvent, error) {
	payload := storableEvent.PayloadJSON

	switch storableEvent.EventType {
	case loanregistry.AuthorityContractSetEventType:
		return unmarshalEvent[loanregistry.AuthorityContractSet](payload)

	case loanregistry.MaxLoanDurationSetEventType:
		return unmarshalEvent[loanregistry.MaxLoanDurationSet](payload)

	case loanregistry.ExtensionFeeSetEventType:
		return unmarshalEvent[loanregistry.ExtensionFeeSet](payload)

	case loanregistry.LoanStartedEventType:
		return unmarshalEvent[loanregistry.LoanStarted](payload)

	case loanregistry.AccessDeniedEventType:
		return unmarshalEvent[loanregistry.AccessDenied](payload)

	case loanregistry.LoanEndedEventType:
		return unmarshalEvent[loanregistry.LoanEnded](payload)

	case loanregistry.LoanExtendedEventType:
		return unmarshalEvent[loanregistry.LoanExtended](payload)

	default:
		return nil, errors.Join(
			ErrMappingDomainEventFromStorableEvent,
			fmt.Errorf("%w: %s", ErrUnknownEventType, storableEvent.EventType),
		)
	}
}

func unmarshalEvent[E loanregistry.DomainEvent](payload []byte) (loanregistry.DomainEvent, error) {
	var event E

	if err := jsoniter.ConfigFastest.Unmarshal(payload, &event); err != nil {
		return nil, errors.Join(ErrMappingDomainEventFromStorableEvent, err)
	}

	return event, nil
}
