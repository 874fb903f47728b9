package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/event"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/persistence"
	"github.com/AkramSamirElhayani/IMS/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var fixedTime = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// harness wires the services to an in-memory SQLite database and a synchronous bus
type harness struct {
	db           *gorm.DB
	bus          *event.InMemoryEventBus
	factory      *persistence.GormUnitOfWorkFactory
	events       *testutil.MockEventHandler
	recompute    *LedgerRecomputeHandler
	items        *ItemService
	transactions *TransactionService
}

func newHarness(t *testing.T, opts ...persistence.UnitOfWorkOption) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)

	db := testutil.NewTestDB(t)
	bus := event.NewInMemoryEventBus(log)
	factory := persistence.NewGormUnitOfWorkFactory(db, bus, opts...)

	h := &harness{
		db:      db,
		bus:     bus,
		factory: factory,
		events: testutil.NewMockEventHandler(
			inventory.EventTypeTransactionCompleted,
			inventory.EventTypeStockLevelChanged,
			inventory.EventTypeCriticalStockLevelReached,
		),
		recompute:    NewLedgerRecomputeHandler(factory, log),
		items:        NewItemService(factory, log),
		transactions: NewTransactionService(factory, DefaultTransactionServiceConfig(), log),
	}
	bus.Subscribe(h.recompute)
	bus.Subscribe(h.events)
	return h
}

func newCreateItemRequest(sku string) CreateItemRequest {
	return CreateItemRequest{
		SKU:             sku,
		Name:            "Item " + sku,
		Type:            string(inventory.ItemTypeComponent),
		MinimumQuantity: 0,
		MaximumQuantity: 100,
		ReorderPoint:    20,
	}
}

func (h *harness) createItem(t *testing.T, sku string) ItemResponse {
	t.Helper()
	res := h.items.CreateItem(context.Background(), newCreateItemRequest(sku))
	require.True(t, res.IsSuccess(), "create item: %v", res.Error())
	return res.Value
}

// move records and completes a transaction, which recomputes the item synchronously
func (h *harness) move(t *testing.T, itemID uuid.UUID, txType inventory.TransactionType, quantity int) TransactionResponse {
	t.Helper()
	res := h.transactions.RecordAndComplete(context.Background(), CreateTransactionRequest{
		ItemID:   itemID,
		Quantity: quantity,
		Type:     string(txType),
	})
	require.True(t, res.IsSuccess(), "record and complete: %v", res.Error())
	return res.Value
}

func (h *harness) currentQuantity(t *testing.T, itemID uuid.UUID) int {
	t.Helper()
	res := h.items.GetItemByID(context.Background(), itemID)
	require.True(t, res.IsSuccess(), "get item: %v", res.Error())
	return res.Value.CurrentQuantity
}
