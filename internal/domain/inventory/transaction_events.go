package inventory

import (
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeTransaction = "Transaction"

// Event type constants
const (
	EventTypeTransactionCreated   = "TransactionCreated"
	EventTypeTransactionCompleted = "TransactionCompleted"
)

// TransactionCreatedEvent is raised by every transaction factory
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID   uuid.UUID       `json:"transaction_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	Reference       string          `json:"reference"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(tx *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, tx.ID),
		TransactionID:   tx.ID,
		ItemID:          tx.itemID,
		TransactionType: tx.transactionType,
		Quantity:        tx.quantity,
		Reference:       tx.reference.Value(),
	}
}

// EventType returns the event type name
func (e *TransactionCreatedEvent) EventType() string {
	return EventTypeTransactionCreated
}

// TransactionCompletedEvent is raised by Complete. It drives the stock recompute of the item.
type TransactionCompletedEvent struct {
	shared.BaseDomainEvent
	TransactionID       uuid.UUID       `json:"transaction_id"`
	ItemID              uuid.UUID       `json:"item_id"`
	TransactionType     TransactionType `json:"transaction_type"`
	Quantity            int             `json:"quantity"`
	SourceLocation      *string         `json:"source_location,omitempty"`
	DestinationLocation *string         `json:"destination_location,omitempty"`
}

// NewTransactionCompletedEvent creates a new TransactionCompletedEvent
func NewTransactionCompletedEvent(tx *Transaction) *TransactionCompletedEvent {
	return &TransactionCompletedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeTransactionCompleted, AggregateTypeTransaction, tx.ID),
		TransactionID:       tx.ID,
		ItemID:              tx.itemID,
		TransactionType:     tx.transactionType,
		Quantity:            tx.quantity,
		SourceLocation:      copyString(tx.sourceLocation),
		DestinationLocation: copyString(tx.destinationLocation),
	}
}

// EventType returns the event type name
func (e *TransactionCompletedEvent) EventType() string {
	return EventTypeTransactionCompleted
}
