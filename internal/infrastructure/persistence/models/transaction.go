package models

import (
	"fmt"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/google/uuid"
)

// TransactionModel is the persistence model for a ledger Transaction
type TransactionModel struct {
	AggregateModel
	Reference           string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	TransactionType     string    `gorm:"type:varchar(30);not null;index"`
	ItemID              uuid.UUID `gorm:"type:uuid;not null;index:idx_inventory_transactions_item_date,priority:1"`
	Quantity            int       `gorm:"not null"`
	SourceLocation      *string   `gorm:"type:varchar(100)"`
	DestinationLocation *string   `gorm:"type:varchar(100)"`
	BatchColumns        `gorm:"embedded;embeddedPrefix:batch_"`
	TransactionDate     time.Time `gorm:"not null;index:idx_inventory_transactions_item_date,priority:2"`
	IsCompleted         bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "inventory_transactions"
}

// ToDomain rebuilds the Transaction aggregate
func (m *TransactionModel) ToDomain() (*inventory.Transaction, error) {
	var batch *inventory.BatchInformation
	if !m.BatchColumns.IsEmpty() {
		b, err := inventory.NewBatchInformation(*m.Number, *m.ManufacturingDate, *m.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("transaction %s has invalid batch: %w", m.ID, err)
		}
		batch = &b
	}

	base := m.BaseModel.ToDomain()
	return inventory.ReconstituteTransaction(inventory.TransactionSnapshot{
		ID:                  base.ID,
		CreatedAt:           base.CreatedAt,
		UpdatedAt:           base.UpdatedAt,
		Version:             m.Version,
		Reference:           m.Reference,
		Type:                inventory.TransactionType(m.TransactionType),
		ItemID:              m.ItemID,
		Quantity:            m.Quantity,
		SourceLocation:      m.SourceLocation,
		DestinationLocation: m.DestinationLocation,
		Batch:               batch,
		TransactionDate:     m.TransactionDate.UTC(),
		IsCompleted:         m.IsCompleted,
	}), nil
}

// TransactionModelFromDomain creates a persistence model from a Transaction aggregate
func TransactionModelFromDomain(tx *inventory.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomainAggregateRoot(&tx.BaseAggregateRoot)
	m.Reference = tx.Reference().Value()
	m.TransactionType = string(tx.Type())
	m.ItemID = tx.ItemID()
	m.Quantity = tx.Quantity()
	m.SourceLocation = tx.SourceLocation()
	m.DestinationLocation = tx.DestinationLocation()
	m.TransactionDate = tx.TransactionDate()
	m.IsCompleted = tx.IsCompleted()

	if b := tx.BatchInformation(); b != nil {
		number := b.BatchNumber()
		mfg := b.ManufacturingDate()
		exp := b.ExpiryDate()
		m.BatchColumns = BatchColumns{Number: &number, ManufacturingDate: &mfg, ExpiryDate: &exp}
	}
	return m
}
