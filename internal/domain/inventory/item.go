package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
)

// Item is the aggregate root for a stock-keeping unit.
//
// State only changes through its methods. Every change queues a domain event.
// The cached stock level is replaced wholesale, never edited in place.
type Item struct {
	shared.BaseAggregateRoot
	sku              SKU
	name             string
	itemType         ItemType
	isActive         bool
	isPerishable     bool
	qualityStatus    QualityStatus
	stockLevel       StockLevel
	storageLocations []string
	batch            *BatchInformation
}

// NewItem creates an active item in Good quality with no storage locations and raises ItemCreated
func NewItem(sku SKU, name string, itemType ItemType, isPerishable bool, stockLevel StockLevel) (*Item, error) {
	if sku.IsZero() {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if err := validateItemName(name); err != nil {
		return nil, err
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Unknown item type: "+itemType.String())
	}
	if _, err := NewStockLevel(stockLevel.current, stockLevel.minimum, stockLevel.maximum, stockLevel.critical); err != nil {
		return nil, err
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		sku:               sku,
		name:              name,
		itemType:          itemType,
		isActive:          true,
		isPerishable:      isPerishable,
		qualityStatus:     QualityStatusGood,
		stockLevel:        stockLevel,
		storageLocations:  make([]string, 0),
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))

	return item, nil
}

// ItemSnapshot carries persisted item state for Reconstitute
type ItemSnapshot struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int
	SKU              string
	Name             string
	ItemType         ItemType
	IsActive         bool
	IsPerishable     bool
	QualityStatus    QualityStatus
	StockLevel       StockLevel
	StorageLocations []string
	Batch            *BatchInformation
}

// ReconstituteItem rebuilds an item from storage without raising events
func ReconstituteItem(s ItemSnapshot) *Item {
	locations := make([]string, 0, len(s.StorageLocations))
	locations = append(locations, s.StorageLocations...)
	return &Item{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        s.ID,
				CreatedAt: s.CreatedAt,
				UpdatedAt: s.UpdatedAt,
			},
			Version: s.Version,
		},
		sku:              SKU{value: s.SKU},
		name:             s.Name,
		itemType:         s.ItemType,
		isActive:         s.IsActive,
		isPerishable:     s.IsPerishable,
		qualityStatus:    s.QualityStatus,
		stockLevel:       s.StockLevel,
		storageLocations: locations,
		batch:            s.Batch,
	}
}

// SKU returns the catalog identifier
func (i *Item) SKU() SKU { return i.sku }

// Name returns the display name
func (i *Item) Name() string { return i.name }

// Type returns the item category
func (i *Item) Type() ItemType { return i.itemType }

// IsActive reports whether the item is active
func (i *Item) IsActive() bool { return i.isActive }

// IsPerishable reports whether the item expires
func (i *Item) IsPerishable() bool { return i.isPerishable }

// QualityStatus returns the current inspection state
func (i *Item) QualityStatus() QualityStatus { return i.qualityStatus }

// StockLevel returns the cached stock snapshot
func (i *Item) StockLevel() StockLevel { return i.stockLevel }

// BatchInformation returns the attached batch, if any
func (i *Item) BatchInformation() *BatchInformation {
	if i.batch == nil {
		return nil
	}
	b := *i.batch
	return &b
}

// StorageLocations returns a sorted copy of the location set
func (i *Item) StorageLocations() []string {
	locations := make([]string, len(i.storageLocations))
	copy(locations, i.storageLocations)
	sort.Strings(locations)
	return locations
}

// HasStorageLocation reports membership in the location set
func (i *Item) HasStorageLocation(location string) bool {
	for _, l := range i.storageLocations {
		if l == location {
			return true
		}
	}
	return false
}

// UpdateStockLevel replaces the stock level with one holding newQuantity and the same thresholds.
// It raises StockLevelChanged and, when newQuantity <= critical, CriticalStockLevelReached.
// Nothing changes if the new level is invalid.
func (i *Item) UpdateStockLevel(newQuantity int, transactionID *uuid.UUID) error {
	next, err := i.stockLevel.WithCurrent(newQuantity)
	if err != nil {
		return err
	}

	oldQuantity := i.stockLevel.Current()
	i.stockLevel = next
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockLevelChangedEvent(i, oldQuantity, newQuantity, transactionID))
	if newQuantity <= next.Critical() {
		i.AddDomainEvent(NewCriticalStockLevelReachedEvent(i, newQuantity, next.Critical()))
	}

	return nil
}

// UpdateQualityStatus sets the status unconditionally. Any transition is allowed.
func (i *Item) UpdateQualityStatus(newStatus QualityStatus) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("INVALID_QUALITY_STATUS", "Unknown quality status: "+newStatus.String())
	}
	oldStatus := i.qualityStatus
	i.qualityStatus = newStatus
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewQualityStatusChangedEvent(i, oldStatus, newStatus))
	return nil
}

// AddStorageLocation adds a location to the set. Adding an existing location is a no-op.
func (i *Item) AddStorageLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return shared.NewDomainError("INVALID_LOCATION", "Location cannot be empty")
	}
	if i.HasStorageLocation(location) {
		return nil
	}
	i.storageLocations = append(i.storageLocations, location)
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewStorageLocationAddedEvent(i, location))
	return nil
}

// RemoveStorageLocation removes a location. Removing an absent location is a no-op.
func (i *Item) RemoveStorageLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return shared.NewDomainError("INVALID_LOCATION", "Location cannot be empty")
	}
	for idx, l := range i.storageLocations {
		if l == location {
			i.storageLocations = append(i.storageLocations[:idx], i.storageLocations[idx+1:]...)
			i.Touch()
			i.IncrementVersion()
			i.AddDomainEvent(NewStorageLocationRemovedEvent(i, location))
			return nil
		}
	}
	return nil
}

// Activate marks the item active. Repeated calls raise the event again.
func (i *Item) Activate() {
	i.isActive = true
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewItemActivatedEvent(i))
}

// Deactivate marks the item inactive. Items are never deleted by the domain.
func (i *Item) Deactivate() {
	i.isActive = false
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewItemDeactivatedEvent(i))
}

// UpdateBasicProperties replaces name, type and perishability. The SKU is not editable.
func (i *Item) UpdateBasicProperties(name string, itemType ItemType, isPerishable bool) error {
	if err := validateItemName(name); err != nil {
		return err
	}
	if !itemType.IsValid() {
		return shared.NewDomainError("INVALID_ITEM_TYPE", "Unknown item type: "+itemType.String())
	}
	i.name = name
	i.itemType = itemType
	i.isPerishable = isPerishable
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))
	return nil
}

// AddBatchInformation attaches batch data, replacing any previous batch
func (i *Item) AddBatchInformation(batch BatchInformation) {
	b := batch
	i.batch = &b
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewBatchInformationAddedEvent(i, batch))
}

// CanWithdraw reports whether quantity can leave stock: active, not quarantined, enough on hand
func (i *Item) CanWithdraw(quantity int) bool {
	return i.isActive &&
		i.qualityStatus != QualityStatusQuarantined &&
		i.stockLevel.Current() >= quantity
}

// HasExpiredBatch reports whether a perishable item's batch is expired at now
func (i *Item) HasExpiredBatch(now time.Time) bool {
	return i.isPerishable && i.batch != nil && i.batch.IsExpiredAt(now)
}

func validateItemName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	return nil
}
