package inventory

import (
	"context"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemSortField names a sortable item attribute
type ItemSortField string

const (
	ItemSortByName     ItemSortField = "name"
	ItemSortBySKU      ItemSortField = "sku"
	ItemSortByQuantity ItemSortField = "quantity"
	ItemSortByType     ItemSortField = "type"
)

// IsValid returns true if the field is sortable
func (f ItemSortField) IsValid() bool {
	switch f {
	case ItemSortByName, ItemSortBySKU, ItemSortByQuantity, ItemSortByType:
		return true
	}
	return false
}

// ItemSearchCriteria filters and orders an item search.
// Term matches name or SKU case-insensitively; quantity bounds are inclusive.
type ItemSearchCriteria struct {
	Term        string
	MinQuantity *int
	MaxQuantity *int
	SortBy      ItemSortField
	Ascending   bool
}

// ItemRepository defines the interface for item persistence.
// Lookups return (nil, nil) when nothing matches.
type ItemRepository interface {
	// GetByID finds an item by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// GetBySKU finds an item by SKU
	GetBySKU(ctx context.Context, sku SKU) (*Item, error)

	// ExistsByID reports whether an item with the ID exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// ExistsBySKU reports whether an item with the SKU exists
	ExistsBySKU(ctx context.Context, sku SKU) (bool, error)

	// GetByType finds items of a category
	GetByType(ctx context.Context, itemType ItemType) ([]*Item, error)

	// GetActive finds all active items
	GetActive(ctx context.Context) ([]*Item, error)

	// GetByLocation finds items stored at a location
	GetByLocation(ctx context.Context, location string) ([]*Item, error)

	// GetPerishable finds perishable items
	GetPerishable(ctx context.Context) ([]*Item, error)

	// GetBelowReorderPoint finds items whose current quantity is at or below minimum
	GetBelowReorderPoint(ctx context.Context) ([]*Item, error)

	// GetAll returns a page of items
	GetAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Item], error)

	// Search filters items by term and quantity range
	Search(ctx context.Context, criteria ItemSearchCriteria) ([]*Item, error)

	// Add stages a new item
	Add(ctx context.Context, item *Item) error

	// Update stages changes to an existing item
	Update(ctx context.Context, item *Item) error

	// Delete stages removal of an item
	Delete(ctx context.Context, item *Item) error
}

// TransactionRepository defines the interface for ledger persistence.
// Lookups return (nil, nil) when nothing matches.
type TransactionRepository interface {
	// GetByID finds a transaction by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByItemID returns an item's transactions, newest first
	GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*Transaction, error)

	// GetByDateRange returns transactions dated within [start, end], oldest first
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*Transaction, error)

	// GetPending returns transactions not yet completed, oldest first
	GetPending(ctx context.Context) ([]*Transaction, error)

	// Add stages a new transaction
	Add(ctx context.Context, tx *Transaction) error

	// Update stages the completion of a transaction
	Update(ctx context.Context, tx *Transaction) error

	// CalculateTotalStockForItem returns the signed sum of completed transactions for the item.
	// It must agree with LedgerTotal.
	CalculateTotalStockForItem(ctx context.Context, itemID uuid.UUID) (int, error)
}

// UnitOfWork scopes both repositories to one save and commit boundary
type UnitOfWork interface {
	shared.UnitOfWork
	Items() ItemRepository
	Transactions() TransactionRepository
}

// UnitOfWorkFactory creates a fresh unit of work per operation
type UnitOfWorkFactory interface {
	New() UnitOfWork
}
