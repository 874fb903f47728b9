package inventory

import "github.com/AkramSamirElhayani/IMS/internal/domain/shared"

const codeInvalidStockLevel = "INVALID_STOCK_LEVEL"

// StockLevel is an immutable snapshot of an item's quantity and its thresholds.
//
// Invariants: current >= 0, minimum >= 0, maximum > minimum, minimum <= critical <= maximum.
// A change of quantity always produces a new StockLevel through NewStockLevel.
type StockLevel struct {
	current  int
	minimum  int
	maximum  int
	critical int
}

// NewStockLevel validates the thresholds in a fixed order and reports the first violation
func NewStockLevel(current, minimum, maximum, critical int) (StockLevel, error) {
	if current < 0 {
		return StockLevel{}, shared.NewDomainError(codeInvalidStockLevel, "Current stock level cannot be negative")
	}
	if minimum < 0 {
		return StockLevel{}, shared.NewDomainError(codeInvalidStockLevel, "Minimum stock level cannot be negative")
	}
	if maximum <= minimum {
		return StockLevel{}, shared.NewDomainError(codeInvalidStockLevel, "Maximum stock level must be greater than minimum")
	}
	if critical < minimum {
		return StockLevel{}, shared.NewDomainError(codeInvalidStockLevel, "Critical level must be greater than or equal to minimum")
	}
	if critical > maximum {
		return StockLevel{}, shared.NewDomainError(codeInvalidStockLevel, "Critical level must be less than or equal to maximum")
	}
	return StockLevel{
		current:  current,
		minimum:  minimum,
		maximum:  maximum,
		critical: critical,
	}, nil
}

// MustNewStockLevel panics if the values are invalid. Intended for tests and constants.
func MustNewStockLevel(current, minimum, maximum, critical int) StockLevel {
	level, err := NewStockLevel(current, minimum, maximum, critical)
	if err != nil {
		panic(err)
	}
	return level
}

// WithCurrent returns a new StockLevel with the same thresholds and a different current quantity
func (s StockLevel) WithCurrent(current int) (StockLevel, error) {
	return NewStockLevel(current, s.minimum, s.maximum, s.critical)
}

// Current returns the on-hand quantity
func (s StockLevel) Current() int { return s.current }

// Minimum returns the reorder threshold
func (s StockLevel) Minimum() int { return s.minimum }

// Maximum returns the capacity threshold
func (s StockLevel) Maximum() int { return s.maximum }

// Critical returns the alert threshold
func (s StockLevel) Critical() int { return s.critical }

// IsLow reports current <= minimum
func (s StockLevel) IsLow() bool {
	return s.current <= s.minimum
}

// IsCritical reports current <= critical
func (s StockLevel) IsCritical() bool {
	return s.current <= s.critical
}

// IsOverflow reports current > maximum
func (s StockLevel) IsOverflow() bool {
	return s.current > s.maximum
}

// Equals compares all four components
func (s StockLevel) Equals(other StockLevel) bool {
	return s == other
}
