package shared

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	// An empty slice means the handler receives all events
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish delivers events in the given order
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	// Subscribe registers a handler for specific event types
	// If no event types are provided, the handler's own EventTypes are used
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a handler from the subscription list
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventJournal durably records events alongside the state that produced them.
// The tx argument is the storage transaction handle of the caller.
type EventJournal interface {
	Append(ctx context.Context, tx any, events ...DomainEvent) error
}

// JournalRecord is one stored event as read back from the journal
type JournalRecord struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// EventJournalReader lists journaled events of an aggregate in the order they occurred
type EventJournalReader interface {
	ListForAggregate(ctx context.Context, aggregateID uuid.UUID) ([]JournalRecord, error)
}

// EventDecoder turns a stored payload back into its typed event
type EventDecoder interface {
	Deserialize(eventType string, data []byte) (DomainEvent, error)
}
