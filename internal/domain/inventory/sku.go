package inventory

import (
	"strings"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
)

// SKU is the catalog identifier of an item. Compared by value.
type SKU struct {
	value string
}

// NewSKU creates a SKU; blank values are rejected
func NewSKU(value string) (SKU, error) {
	if strings.TrimSpace(value) == "" {
		return SKU{}, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	return SKU{value: value}, nil
}

// MustNewSKU is NewSKU for values already known to be valid. It panics otherwise.
func MustNewSKU(value string) SKU {
	sku, err := NewSKU(value)
	if err != nil {
		panic(err)
	}
	return sku
}

// Value returns the raw SKU string
func (s SKU) Value() string {
	return s.value
}

// String implements fmt.Stringer
func (s SKU) String() string {
	return s.value
}

// IsZero reports whether s is the zero SKU
func (s SKU) IsZero() bool {
	return s.value == ""
}

// Equals reports value equality
func (s SKU) Equals(other SKU) bool {
	return s.value == other.value
}
