package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

// recordingPublisher captures published events and what the unit of work looked like at publish time
type recordingPublisher struct {
	mu         sync.Mutex
	events     []shared.DomainEvent
	calls      int
	inTxAtCall []bool
	uow        shared.UnitOfWork
	onPublish  func(ctx context.Context, events []shared.DomainEvent)
	publishErr error
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	p.calls++
	p.events = append(p.events, events...)
	if p.uow != nil {
		p.inTxAtCall = append(p.inTxAtCall, p.uow.InTransaction())
	}
	hook := p.onPublish
	p.mu.Unlock()

	if hook != nil {
		hook(ctx, events)
	}
	return p.publishErr
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func newTestItem(t *testing.T, sku string, current int) *inventory.Item {
	t.Helper()
	level := inventory.MustNewStockLevel(current, 5, 100, 7)
	item, err := inventory.NewItem(inventory.MustNewSKU(sku), "Item "+sku, inventory.ItemTypeComponent, false, level)
	require.NoError(t, err)
	return item
}

// seedItem persists an item through its own unit of work and returns it with events cleared
func seedItem(t *testing.T, db *gorm.DB, sku string, current int) *inventory.Item {
	t.Helper()
	ctx := context.Background()
	item := newTestItem(t, sku, current)
	uow := NewGormUnitOfWork(db, nil)
	require.NoError(t, uow.Items().Add(ctx, item))
	require.NoError(t, uow.SaveChanges(ctx))
	return item
}
