package inventory

import (
	"strings"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
)

// BatchInformation identifies a production batch and its shelf life
type BatchInformation struct {
	batchNumber       string
	manufacturingDate time.Time
	expiryDate        time.Time
}

// NewBatchInformation requires a batch number and an expiry strictly after manufacture
func NewBatchInformation(batchNumber string, manufacturingDate, expiryDate time.Time) (BatchInformation, error) {
	if strings.TrimSpace(batchNumber) == "" {
		return BatchInformation{}, shared.NewDomainError("INVALID_BATCH", "Batch number cannot be empty")
	}
	if !expiryDate.After(manufacturingDate) {
		return BatchInformation{}, shared.NewDomainError("INVALID_BATCH", "Expiry date must be after manufacturing date")
	}
	return BatchInformation{
		batchNumber:       batchNumber,
		manufacturingDate: manufacturingDate.UTC(),
		expiryDate:        expiryDate.UTC(),
	}, nil
}

// BatchNumber returns the batch identifier
func (b BatchInformation) BatchNumber() string { return b.batchNumber }

// ManufacturingDate returns the production date
func (b BatchInformation) ManufacturingDate() time.Time { return b.manufacturingDate }

// ExpiryDate returns the expiry date
func (b BatchInformation) ExpiryDate() time.Time { return b.expiryDate }

// IsExpired evaluates against the current time on every call
func (b BatchInformation) IsExpired() bool {
	return b.IsExpiredAt(time.Now().UTC())
}

// IsExpiredAt reports whether the batch is past its expiry at the given instant
func (b BatchInformation) IsExpiredAt(now time.Time) bool {
	return now.After(b.expiryDate)
}

// Equals compares batch number and both dates
func (b BatchInformation) Equals(other BatchInformation) bool {
	return b.batchNumber == other.batchNumber &&
		b.manufacturingDate.Equal(other.manufacturingDate) &&
		b.expiryDate.Equal(other.expiryDate)
}
