package models

import (
	"fmt"
	"sort"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/google/uuid"
)

// ItemModel is the persistence model for the Item aggregate root
type ItemModel struct {
	AggregateModel
	SKU              string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name             string `gorm:"type:varchar(200);not null;index"`
	ItemType         string `gorm:"type:varchar(30);not null;index"`
	IsActive         bool   `gorm:"not null;default:true"`
	IsPerishable     bool   `gorm:"not null;default:false"`
	QualityStatus    string `gorm:"type:varchar(30);not null"`
	CurrentQuantity  int    `gorm:"not null;default:0"`
	MinimumQuantity  int    `gorm:"not null;default:0"`
	MaximumQuantity  int    `gorm:"not null"`
	CriticalQuantity int    `gorm:"not null"`
	BatchColumns     `gorm:"embedded;embeddedPrefix:batch_"`

	StorageLocations []ItemStorageLocationModel `gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ItemStorageLocationModel is one storage location of an item
type ItemStorageLocationModel struct {
	ItemID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Location string    `gorm:"type:varchar(100);primaryKey;index"`
}

// TableName returns the table name for GORM
func (ItemStorageLocationModel) TableName() string {
	return "item_storage_locations"
}

// ToDomain rebuilds the Item aggregate. Stored values are re-validated.
func (m *ItemModel) ToDomain() (*inventory.Item, error) {
	level, err := inventory.NewStockLevel(m.CurrentQuantity, m.MinimumQuantity, m.MaximumQuantity, m.CriticalQuantity)
	if err != nil {
		return nil, fmt.Errorf("item %s has invalid stock level: %w", m.ID, err)
	}

	var batch *inventory.BatchInformation
	if !m.BatchColumns.IsEmpty() {
		b, err := inventory.NewBatchInformation(*m.Number, *m.ManufacturingDate, *m.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("item %s has invalid batch: %w", m.ID, err)
		}
		batch = &b
	}

	locations := make([]string, 0, len(m.StorageLocations))
	for _, l := range m.StorageLocations {
		locations = append(locations, l.Location)
	}
	sort.Strings(locations)

	base := m.BaseModel.ToDomain()
	return inventory.ReconstituteItem(inventory.ItemSnapshot{
		ID:               base.ID,
		CreatedAt:        base.CreatedAt,
		UpdatedAt:        base.UpdatedAt,
		Version:          m.Version,
		SKU:              m.SKU,
		Name:             m.Name,
		ItemType:         inventory.ItemType(m.ItemType),
		IsActive:         m.IsActive,
		IsPerishable:     m.IsPerishable,
		QualityStatus:    inventory.QualityStatus(m.QualityStatus),
		StockLevel:       level,
		StorageLocations: locations,
		Batch:            batch,
	}), nil
}

// ItemModelFromDomain creates a persistence model from an Item aggregate
func ItemModelFromDomain(item *inventory.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomainAggregateRoot(&item.BaseAggregateRoot)
	m.SKU = item.SKU().Value()
	m.Name = item.Name()
	m.ItemType = string(item.Type())
	m.IsActive = item.IsActive()
	m.IsPerishable = item.IsPerishable()
	m.QualityStatus = string(item.QualityStatus())

	level := item.StockLevel()
	m.CurrentQuantity = level.Current()
	m.MinimumQuantity = level.Minimum()
	m.MaximumQuantity = level.Maximum()
	m.CriticalQuantity = level.Critical()

	if b := item.BatchInformation(); b != nil {
		number := b.BatchNumber()
		mfg := b.ManufacturingDate()
		exp := b.ExpiryDate()
		m.BatchColumns = BatchColumns{Number: &number, ManufacturingDate: &mfg, ExpiryDate: &exp}
	}

	for _, location := range item.StorageLocations() {
		m.StorageLocations = append(m.StorageLocations, ItemStorageLocationModel{ItemID: item.ID, Location: location})
	}
	return m
}
