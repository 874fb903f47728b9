package inventory

import "github.com/AkramSamirElhayani/IMS/internal/domain/shared"

// ItemType is the catalog category of an item
type ItemType string

const (
	ItemTypeRawMaterial  ItemType = "RAW_MATERIAL"
	ItemTypeComponent    ItemType = "COMPONENT"
	ItemTypeFinishedGood ItemType = "FINISHED_GOOD"
	ItemTypeConsumable   ItemType = "CONSUMABLE"
	ItemTypePackaging    ItemType = "PACKAGING"
)

// String returns the string representation of ItemType
func (t ItemType) String() string {
	return string(t)
}

// IsValid returns true if the item type is one of the known categories
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRawMaterial,
		ItemTypeComponent,
		ItemTypeFinishedGood,
		ItemTypeConsumable,
		ItemTypePackaging:
		return true
	}
	return false
}

// ParseItemType converts a raw string to an ItemType
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_ITEM_TYPE", "Unknown item type: "+s)
	}
	return t, nil
}

// QualityStatus is the inspection state of an item
type QualityStatus string

const (
	QualityStatusGood            QualityStatus = "GOOD"
	QualityStatusDamaged         QualityStatus = "DAMAGED"
	QualityStatusQuarantined     QualityStatus = "QUARANTINED"
	QualityStatusExpired         QualityStatus = "EXPIRED"
	QualityStatusUnderInspection QualityStatus = "UNDER_INSPECTION"
)

// String returns the string representation of QualityStatus
func (s QualityStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is known
func (s QualityStatus) IsValid() bool {
	switch s {
	case QualityStatusGood,
		QualityStatusDamaged,
		QualityStatusQuarantined,
		QualityStatusExpired,
		QualityStatusUnderInspection:
		return true
	}
	return false
}

// ParseQualityStatus converts a raw string to a QualityStatus
func ParseQualityStatus(s string) (QualityStatus, error) {
	q := QualityStatus(s)
	if !q.IsValid() {
		return "", shared.NewDomainError("INVALID_QUALITY_STATUS", "Unknown quality status: "+s)
	}
	return q, nil
}
