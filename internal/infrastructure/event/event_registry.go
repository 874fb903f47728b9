package event

import (
	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
)

// RegisterInventoryEvents registers every inventory event type with the serializer.
// Item history decodes journaled payloads through these factories.
func RegisterInventoryEvents(serializer *EventSerializer) {
	// Item
	serializer.Register(inventory.EventTypeItemCreated, func() shared.DomainEvent { return &inventory.ItemCreatedEvent{} })
	serializer.Register(inventory.EventTypeItemUpdated, func() shared.DomainEvent { return &inventory.ItemUpdatedEvent{} })
	serializer.Register(inventory.EventTypeStockLevelChanged, func() shared.DomainEvent { return &inventory.StockLevelChangedEvent{} })
	serializer.Register(inventory.EventTypeCriticalStockLevelReached, func() shared.DomainEvent { return &inventory.CriticalStockLevelReachedEvent{} })
	serializer.Register(inventory.EventTypeQualityStatusChanged, func() shared.DomainEvent { return &inventory.QualityStatusChangedEvent{} })
	serializer.Register(inventory.EventTypeItemActivated, func() shared.DomainEvent { return &inventory.ItemActivatedEvent{} })
	serializer.Register(inventory.EventTypeItemDeactivated, func() shared.DomainEvent { return &inventory.ItemDeactivatedEvent{} })
	serializer.Register(inventory.EventTypeStorageLocationAdded, func() shared.DomainEvent { return &inventory.StorageLocationAddedEvent{} })
	serializer.Register(inventory.EventTypeStorageLocationRemoved, func() shared.DomainEvent { return &inventory.StorageLocationRemovedEvent{} })
	serializer.Register(inventory.EventTypeBatchInformationAdded, func() shared.DomainEvent { return &inventory.BatchInformationAddedEvent{} })

	// Transaction
	serializer.Register(inventory.EventTypeTransactionCreated, func() shared.DomainEvent { return &inventory.TransactionCreatedEvent{} })
	serializer.Register(inventory.EventTypeTransactionCompleted, func() shared.DomainEvent { return &inventory.TransactionCompletedEvent{} })
}

// NewInventorySerializer returns a serializer with all inventory events registered
func NewInventorySerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterInventoryEvents(s)
	return s
}
