package shell

import (
	"context"
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/timed-access-loans/journal"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
)

var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

type MessageID = string
type CausationID = string
type CorrelationID = string

// EventMetadata travels with every journaled event.
type EventMetadata struct {
	MessageID      MessageID
	CausationID    CausationID
	CorrelationID  CorrelationID
	CallerIdentity loanregistry.Identity
	CommandType    string
}

func BuildEventMetadata(
	messageID uuid.UUID,
	causationID uuid.UUID,
	correlationID uuid.UUID,
	caller loanregistry.Identity,
	commandType string,
) EventMetadata {

	return EventMetadata{
		MessageID:      messageID.String(),
		CausationID:    causationID.String(),
		CorrelationID:  correlationID.String(),
		CallerIdentity: caller,
		CommandType:    commandType,
	}
}

func EventMetadataFrom(storableEvent journal.StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}

type messageContextKey int

const (
	correlationIDKey messageContextKey = iota
	causationIDKey
)

// WithCorrelationID marks all events recorded under ctx as part of one conversation.
func WithCorrelationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithCausationID marks all events recorded under ctx as caused by the message id.
func WithCausationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, causationIDKey, id)
}

// metadataFor builds fresh metadata; ids missing from ctx fall back to the new message id.
func metadataFor(ctx context.Context, caller loanregistry.Identity, commandType string) EventMetadata {
	messageID := uuid.New()

	correlationID, ok := ctx.Value(correlationIDKey).(uuid.UUID)
	if !ok {
		correlationID = messageID
	}

	causationID, ok := ctx.Value(causationIDKey).(uuid.UUID)
	if !ok {
		causationID = messageID
	}

	return BuildEventMetadata(messageID, causationID, correlationID, caller, commandType)
}
