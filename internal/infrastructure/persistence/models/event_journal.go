package models

import (
	"time"

	"github.com/google/uuid"
)

// EventJournalModel is one domain event persisted in the same database
// transaction as the aggregate change that raised it
type EventJournalModel struct {
	EventID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType     string    `gorm:"type:varchar(100);not null;index"`
	AggregateType string    `gorm:"type:varchar(50);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index:idx_domain_event_journal_aggregate,priority:1"`
	Payload       string    `gorm:"type:text;not null"`
	OccurredAt    time.Time `gorm:"not null;index:idx_domain_event_journal_aggregate,priority:2"`
	Position      int       `gorm:"not null;default:0"`
	RecordedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EventJournalModel) TableName() string {
	return "domain_event_journal"
}
