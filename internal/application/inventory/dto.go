package inventory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateItemRequest creates an item with zero stock.
// The reorder point doubles as the critical level.
type CreateItemRequest struct {
	SKU              string   `json:"sku" validate:"required,max=50"`
	Name             string   `json:"name" validate:"required,max=200"`
	Type             string   `json:"type" validate:"required,item_type"`
	IsPerishable     bool     `json:"is_perishable"`
	MinimumQuantity  int      `json:"minimum_quantity" validate:"gte=0"`
	MaximumQuantity  int      `json:"maximum_quantity" validate:"gtfield=MinimumQuantity"`
	ReorderPoint     int      `json:"reorder_point" validate:"gtefield=MinimumQuantity,ltefield=MaximumQuantity"`
	StorageLocations []string `json:"storage_locations" validate:"omitempty,dive,required,max=100"`
}

// UpdateItemRequest replaces the editable properties of an item
type UpdateItemRequest struct {
	ItemID       uuid.UUID `json:"item_id" validate:"required"`
	Name         string    `json:"name" validate:"required,max=200"`
	Type         string    `json:"type" validate:"required,item_type"`
	IsPerishable bool      `json:"is_perishable"`
}

// UpdateStockLevelRequest overrides the cached quantity of an item
type UpdateStockLevelRequest struct {
	ItemID      uuid.UUID `json:"item_id" validate:"required"`
	NewQuantity int       `json:"new_quantity" validate:"gte=0"`
}

// BatchRequest describes a production batch
type BatchRequest struct {
	BatchNumber       string    `json:"batch_number" validate:"required,max=50"`
	ManufacturingDate time.Time `json:"manufacturing_date" validate:"required"`
	ExpiryDate        time.Time `json:"expiry_date" validate:"required,gtfield=ManufacturingDate"`
}

// AddBatchInformationRequest attaches batch data to an item
type AddBatchInformationRequest struct {
	ItemID uuid.UUID    `json:"item_id" validate:"required"`
	Batch  BatchRequest `json:"batch"`
}

// StorageLocationRequest adds or removes a storage location
type StorageLocationRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Location string    `json:"location" validate:"required,max=100"`
}

// UpdateQualityStatusRequest sets the quality status of an item
type UpdateQualityStatusRequest struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
	Status string    `json:"status" validate:"required,quality_status"`
}

// SearchItemsRequest filters items by term and quantity range
type SearchItemsRequest struct {
	Term        string `json:"term" validate:"max=200"`
	MinQuantity *int   `json:"min_quantity" validate:"omitempty,gte=0"`
	MaxQuantity *int   `json:"max_quantity" validate:"omitempty,gte=0"`
	SortBy      string `json:"sort_by" validate:"omitempty,oneof=name sku quantity type"`
	Ascending   bool   `json:"ascending"`
}

// CreateTransactionRequest records a pending stock movement.
// The direction is derived from the type. Missing inbound destinations and
// outbound sources fall back to the configured default location.
type CreateTransactionRequest struct {
	ItemID              uuid.UUID     `json:"item_id" validate:"required"`
	Quantity            int           `json:"quantity" validate:"gt=0"`
	Type                string        `json:"type" validate:"required,transaction_type"`
	SourceLocation      string        `json:"source_location" validate:"max=100"`
	DestinationLocation string        `json:"destination_location" validate:"max=100"`
	Batch               *BatchRequest `json:"batch,omitempty"`
	TransactionDate     *time.Time    `json:"transaction_date,omitempty"`
}

// BatchResponse represents batch information in responses
type BatchResponse struct {
	BatchNumber       string    `json:"batch_number"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
	ExpiryDate        time.Time `json:"expiry_date"`
}

// ItemResponse represents an item in responses
type ItemResponse struct {
	ID               uuid.UUID      `json:"id"`
	SKU              string         `json:"sku"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	IsActive         bool           `json:"is_active"`
	IsPerishable     bool           `json:"is_perishable"`
	QualityStatus    string         `json:"quality_status"`
	CurrentQuantity  int            `json:"current_quantity"`
	MinimumQuantity  int            `json:"minimum_quantity"`
	MaximumQuantity  int            `json:"maximum_quantity"`
	CriticalLevel    int            `json:"critical_level"`
	IsLow            bool           `json:"is_low"`
	IsCritical       bool           `json:"is_critical"`
	StorageLocations []string       `json:"storage_locations"`
	Batch            *BatchResponse `json:"batch,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Version          int            `json:"version"`
}

// TransactionResponse represents a transaction in responses
type TransactionResponse struct {
	ID                  uuid.UUID      `json:"id"`
	Reference           string         `json:"reference"`
	ItemID              uuid.UUID      `json:"item_id"`
	Type                string         `json:"type"`
	Quantity            int            `json:"quantity"`
	SignedQuantity      int            `json:"signed_quantity"`
	SourceLocation      *string        `json:"source_location,omitempty"`
	DestinationLocation *string        `json:"destination_location,omitempty"`
	Batch               *BatchResponse `json:"batch,omitempty"`
	TransactionDate     time.Time      `json:"transaction_date"`
	IsCompleted         bool           `json:"is_completed"`
	CreatedAt           time.Time      `json:"created_at"`
}

// LedgerEntryResponse is one line of an item's running balance
type LedgerEntryResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Reference     string    `json:"reference"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Delta         int       `json:"delta"`
	Balance       int       `json:"balance"`
}

// LedgerBalanceResponse compares the cached quantity of an item with its ledger
type LedgerBalanceResponse struct {
	ItemID         uuid.UUID             `json:"item_id"`
	CachedQuantity int                   `json:"cached_quantity"`
	LedgerQuantity int                   `json:"ledger_quantity"`
	InSync         bool                  `json:"in_sync"`
	Entries        []LedgerEntryResponse `json:"entries"`
}

// ItemHistoryEntry is one journaled event of an item
type ItemHistoryEntry struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Description string          `json:"description,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

// ToItemResponse converts a domain item to a response
func ToItemResponse(item *inventory.Item) ItemResponse {
	level := item.StockLevel()
	return ItemResponse{
		ID:               item.ID,
		SKU:              item.SKU().Value(),
		Name:             item.Name(),
		Type:             item.Type().String(),
		IsActive:         item.IsActive(),
		IsPerishable:     item.IsPerishable(),
		QualityStatus:    item.QualityStatus().String(),
		CurrentQuantity:  level.Current(),
		MinimumQuantity:  level.Minimum(),
		MaximumQuantity:  level.Maximum(),
		CriticalLevel:    level.Critical(),
		IsLow:            level.IsLow(),
		IsCritical:       level.IsCritical(),
		StorageLocations: item.StorageLocations(),
		Batch:            toBatchResponse(item.BatchInformation()),
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
		Version:          item.Version,
	}
}

// ToItemResponses converts a slice of domain items
func ToItemResponses(items []*inventory.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out
}

// ToTransactionResponse converts a domain transaction to a response
func ToTransactionResponse(tx *inventory.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                  tx.ID,
		Reference:           tx.Reference().Value(),
		ItemID:              tx.ItemID(),
		Type:                tx.Type().String(),
		Quantity:            tx.Quantity(),
		SignedQuantity:      tx.SignedQuantity(),
		SourceLocation:      tx.SourceLocation(),
		DestinationLocation: tx.DestinationLocation(),
		Batch:               toBatchResponse(tx.BatchInformation()),
		TransactionDate:     tx.TransactionDate(),
		IsCompleted:         tx.IsCompleted(),
		CreatedAt:           tx.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions
func ToTransactionResponses(txs []*inventory.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = ToTransactionResponse(tx)
	}
	return out
}

func toBatchResponse(b *inventory.BatchInformation) *BatchResponse {
	if b == nil {
		return nil
	}
	return &BatchResponse{
		BatchNumber:       b.BatchNumber(),
		ManufacturingDate: b.ManufacturingDate(),
		ExpiryDate:        b.ExpiryDate(),
	}
}

func toLedgerEntries(entries []inventory.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			TransactionID: e.TransactionID,
			Reference:     e.Reference,
			Type:          e.Type.String(),
			Quantity:      e.Quantity,
			Delta:         e.Delta,
			Balance:       e.Balance,
		}
	}
	return out
}

func toHistoryEntry(r shared.JournalRecord) ItemHistoryEntry {
	return ItemHistoryEntry{
		EventID:    r.EventID,
		EventType:  r.EventType,
		OccurredAt: r.OccurredAt,
		Payload:    r.Payload,
	}
}

// describeEvent renders a decoded item event as one line of history
func describeEvent(event shared.DomainEvent) string {
	switch e := event.(type) {
	case *inventory.ItemCreatedEvent:
		return fmt.Sprintf("created %s as %s", e.SKU, e.ItemType)
	case *inventory.ItemUpdatedEvent:
		return fmt.Sprintf("renamed to %q (%s, perishable=%t)", e.Name, e.ItemType, e.IsPerishable)
	case *inventory.StockLevelChangedEvent:
		return fmt.Sprintf("stock %d -> %d", e.OldQuantity, e.NewQuantity)
	case *inventory.CriticalStockLevelReachedEvent:
		return fmt.Sprintf("stock %d at or below critical level %d", e.CurrentQuantity, e.CriticalLevel)
	case *inventory.QualityStatusChangedEvent:
		return fmt.Sprintf("quality %s -> %s", e.OldStatus, e.NewStatus)
	case *inventory.ItemActivatedEvent:
		return "activated"
	case *inventory.ItemDeactivatedEvent:
		return "deactivated"
	case *inventory.StorageLocationAddedEvent:
		return "location added: " + e.Location
	case *inventory.StorageLocationRemovedEvent:
		return "location removed: " + e.Location
	case *inventory.BatchInformationAddedEvent:
		return fmt.Sprintf("batch %s expires %s", e.BatchNumber, e.ExpiryDate.Format(time.DateOnly))
	default:
		return ""
	}
}

func (b BatchRequest) toDomain() (inventory.BatchInformation, error) {
	return inventory.NewBatchInformation(b.BatchNumber, b.ManufacturingDate, b.ExpiryDate)
}
