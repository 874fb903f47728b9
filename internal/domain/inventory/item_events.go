package inventory

import (
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeItem = "Item"

// Event type constants
const (
	EventTypeItemCreated               = "ItemCreated"
	EventTypeItemUpdated               = "ItemUpdated"
	EventTypeStockLevelChanged         = "StockLevelChanged"
	EventTypeCriticalStockLevelReached = "CriticalStockLevelReached"
	EventTypeQualityStatusChanged      = "QualityStatusChanged"
	EventTypeItemActivated             = "ItemActivated"
	EventTypeItemDeactivated           = "ItemDeactivated"
	EventTypeStorageLocationAdded      = "StorageLocationAdded"
	EventTypeStorageLocationRemoved    = "StorageLocationRemoved"
	EventTypeBatchInformationAdded     = "BatchInformationAdded"
)

// ItemCreatedEvent is raised once when an item is created
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	SKU      string    `json:"sku"`
	ItemType ItemType  `json:"item_type"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		SKU:             item.sku.Value(),
		ItemType:        item.itemType,
	}
}

// EventType returns the event type name
func (e *ItemCreatedEvent) EventType() string {
	return EventTypeItemCreated
}

// ItemUpdatedEvent is raised when name, type or perishability are replaced
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
	ItemID       uuid.UUID `json:"item_id"`
	Name         string    `json:"name"`
	ItemType     ItemType  `json:"item_type"`
	IsPerishable bool      `json:"is_perishable"`
}

// NewItemUpdatedEvent creates a new ItemUpdatedEvent
func NewItemUpdatedEvent(item *Item) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Name:            item.name,
		ItemType:        item.itemType,
		IsPerishable:    item.isPerishable,
	}
}

// EventType returns the event type name
func (e *ItemUpdatedEvent) EventType() string {
	return EventTypeItemUpdated
}

// StockLevelChangedEvent is raised on every stock level replacement, including no-op replacements
type StockLevelChangedEvent struct {
	shared.BaseDomainEvent
	ItemID        uuid.UUID  `json:"item_id"`
	OldQuantity   int        `json:"old_quantity"`
	NewQuantity   int        `json:"new_quantity"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
}

// NewStockLevelChangedEvent creates a new StockLevelChangedEvent
func NewStockLevelChangedEvent(item *Item, oldQuantity, newQuantity int, transactionID *uuid.UUID) *StockLevelChangedEvent {
	return &StockLevelChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLevelChanged, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		OldQuantity:     oldQuantity,
		NewQuantity:     newQuantity,
		TransactionID:   transactionID,
	}
}

// EventType returns the event type name
func (e *StockLevelChangedEvent) EventType() string {
	return EventTypeStockLevelChanged
}

// CriticalStockLevelReachedEvent is raised when the new quantity is at or below the critical level
type CriticalStockLevelReachedEvent struct {
	shared.BaseDomainEvent
	ItemID          uuid.UUID `json:"item_id"`
	CurrentQuantity int       `json:"current_quantity"`
	CriticalLevel   int       `json:"critical_level"`
}

// NewCriticalStockLevelReachedEvent creates a new CriticalStockLevelReachedEvent
func NewCriticalStockLevelReachedEvent(item *Item, current, critical int) *CriticalStockLevelReachedEvent {
	return &CriticalStockLevelReachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCriticalStockLevelReached, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		CurrentQuantity: current,
		CriticalLevel:   critical,
	}
}

// EventType returns the event type name
func (e *CriticalStockLevelReachedEvent) EventType() string {
	return EventTypeCriticalStockLevelReached
}

// QualityStatusChangedEvent is raised on every quality status update
type QualityStatusChangedEvent struct {
	shared.BaseDomainEvent
	ItemID    uuid.UUID     `json:"item_id"`
	OldStatus QualityStatus `json:"old_status"`
	NewStatus QualityStatus `json:"new_status"`
}

// NewQualityStatusChangedEvent creates a new QualityStatusChangedEvent
func NewQualityStatusChangedEvent(item *Item, oldStatus, newStatus QualityStatus) *QualityStatusChangedEvent {
	return &QualityStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQualityStatusChanged, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// EventType returns the event type name
func (e *QualityStatusChangedEvent) EventType() string {
	return EventTypeQualityStatusChanged
}

// ItemActivatedEvent is raised by every Activate call
type ItemActivatedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID `json:"item_id"`
}

// NewItemActivatedEvent creates a new ItemActivatedEvent
func NewItemActivatedEvent(item *Item) *ItemActivatedEvent {
	return &ItemActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemActivated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
	}
}

// EventType returns the event type name
func (e *ItemActivatedEvent) EventType() string {
	return EventTypeItemActivated
}

// ItemDeactivatedEvent is raised by every Deactivate call
type ItemDeactivatedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID `json:"item_id"`
}

// NewItemDeactivatedEvent creates a new ItemDeactivatedEvent
func NewItemDeactivatedEvent(item *Item) *ItemDeactivatedEvent {
	return &ItemDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemDeactivated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
	}
}

// EventType returns the event type name
func (e *ItemDeactivatedEvent) EventType() string {
	return EventTypeItemDeactivated
}

// StorageLocationAddedEvent is raised when a new location joins the set
type StorageLocationAddedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	Location string    `json:"location"`
}

// NewStorageLocationAddedEvent creates a new StorageLocationAddedEvent
func NewStorageLocationAddedEvent(item *Item, location string) *StorageLocationAddedEvent {
	return &StorageLocationAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStorageLocationAdded, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Location:        location,
	}
}

// EventType returns the event type name
func (e *StorageLocationAddedEvent) EventType() string {
	return EventTypeStorageLocationAdded
}

// StorageLocationRemovedEvent is raised when a location leaves the set
type StorageLocationRemovedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	Location string    `json:"location"`
}

// NewStorageLocationRemovedEvent creates a new StorageLocationRemovedEvent
func NewStorageLocationRemovedEvent(item *Item, location string) *StorageLocationRemovedEvent {
	return &StorageLocationRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStorageLocationRemoved, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Location:        location,
	}
}

// EventType returns the event type name
func (e *StorageLocationRemovedEvent) EventType() string {
	return EventTypeStorageLocationRemoved
}

// BatchInformationAddedEvent is raised when batch data is attached to an item
type BatchInformationAddedEvent struct {
	shared.BaseDomainEvent
	ItemID            uuid.UUID `json:"item_id"`
	BatchNumber       string    `json:"batch_number"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
	ExpiryDate        time.Time `json:"expiry_date"`
}

// NewBatchInformationAddedEvent creates a new BatchInformationAddedEvent
func NewBatchInformationAddedEvent(item *Item, batch BatchInformation) *BatchInformationAddedEvent {
	return &BatchInformationAddedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeBatchInformationAdded, AggregateTypeItem, item.ID),
		ItemID:            item.ID,
		BatchNumber:       batch.BatchNumber(),
		ManufacturingDate: batch.ManufacturingDate(),
		ExpiryDate:        batch.ExpiryDate(),
	}
}

// EventType returns the event type name
func (e *BatchInformationAddedEvent) EventType() string {
	return EventTypeBatchInformationAdded
}
