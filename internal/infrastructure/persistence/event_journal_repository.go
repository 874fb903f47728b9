package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventEncoder turns a domain event into its stored payload
type EventEncoder interface {
	Serialize(event shared.DomainEvent) ([]byte, error)
}

// GormEventJournal stores domain events in the domain_event_journal table.
// Append writes through the caller's transaction so events and state commit together.
type GormEventJournal struct {
	db      *gorm.DB
	encoder EventEncoder
}

// NewGormEventJournal creates a new GormEventJournal
func NewGormEventJournal(db *gorm.DB, encoder EventEncoder) *GormEventJournal {
	return &GormEventJournal{db: db, encoder: encoder}
}

// Append stores events in order. tx must be the *gorm.DB of the open transaction.
func (j *GormEventJournal) Append(ctx context.Context, tx any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	db, ok := tx.(*gorm.DB)
	if !ok || db == nil {
		return fmt.Errorf("event journal requires a *gorm.DB transaction, got %T", tx)
	}

	now := time.Now().UTC()
	records := make([]models.EventJournalModel, 0, len(events))
	for i, event := range events {
		payload, err := j.encode(event)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", event.EventType(), err)
		}
		records = append(records, models.EventJournalModel{
			EventID:       event.EventID(),
			EventType:     event.EventType(),
			AggregateType: event.AggregateType(),
			AggregateID:   event.AggregateID(),
			Payload:       string(payload),
			OccurredAt:    event.OccurredAt().UTC(),
			Position:      i,
			RecordedAt:    now,
		})
	}

	if err := db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to append %d events: %w", len(records), err)
	}
	return nil
}

// ListForAggregate returns the journaled events of an aggregate, oldest first
func (j *GormEventJournal) ListForAggregate(ctx context.Context, aggregateID uuid.UUID) ([]shared.JournalRecord, error) {
	var rows []models.EventJournalModel
	err := j.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("occurred_at ASC, recorded_at ASC, position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for aggregate %s: %w", aggregateID, err)
	}

	out := make([]shared.JournalRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, shared.JournalRecord{
			EventID:       row.EventID,
			EventType:     row.EventType,
			AggregateType: row.AggregateType,
			AggregateID:   row.AggregateID,
			OccurredAt:    row.OccurredAt.UTC(),
			Payload:       json.RawMessage(row.Payload),
		})
	}
	return out, nil
}

func (j *GormEventJournal) encode(event shared.DomainEvent) ([]byte, error) {
	if j.encoder != nil {
		return j.encoder.Serialize(event)
	}
	return json.Marshal(event)
}

var (
	_ shared.EventJournal       = (*GormEventJournal)(nil)
	_ shared.EventJournalReader = (*GormEventJournal)(nil)
)
