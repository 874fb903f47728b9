package persistence

import (
	"strings"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ItemSortFields contains allowed sort columns for items
var ItemSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"sku":              true,
	"name":             true,
	"item_type":        true,
	"quality_status":   true,
	"current_quantity": true,
}

// TransactionSortFields contains allowed sort columns for ledger transactions
var TransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"reference":        true,
	"transaction_type": true,
	"quantity":         true,
	"transaction_date": true,
}

// itemSortColumn maps a search sort field to its column
func itemSortColumn(field inventory.ItemSortField) string {
	switch field {
	case inventory.ItemSortBySKU:
		return "sku"
	case inventory.ItemSortByQuantity:
		return "current_quantity"
	case inventory.ItemSortByType:
		return "item_type"
	default:
		return "name"
	}
}
