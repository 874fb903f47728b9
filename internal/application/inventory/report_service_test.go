package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestInventoryReportService_BuildDailyReport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	metrics, _ := newTestLedgerMetrics(t)
	service := NewInventoryReportService(h.factory, zaptest.NewLogger(t))
	service.SetMetrics(metrics)
	now := time.Now().UTC()

	stocked := h.createItem(t, "RPT-STOCKED")
	h.move(t, stocked.ID, inventory.TransactionTypePurchase, 60)

	empty := h.createItem(t, "RPT-EMPTY")

	perishable := newCreateItemRequest("RPT-MILK")
	perishable.IsPerishable = true
	milk := h.items.CreateItem(ctx, perishable)
	require.True(t, milk.IsSuccess())
	h.move(t, milk.Value.ID, inventory.TransactionTypePurchase, 10)
	require.True(t, h.items.AddBatchInformation(ctx, AddBatchInformationRequest{
		ItemID: milk.Value.ID,
		Batch: BatchRequest{
			BatchNumber:       "MILK-01",
			ManufacturingDate: now.AddDate(0, 0, -10),
			ExpiryDate:        now.AddDate(0, 0, -1),
		},
	}).IsSuccess())

	oldest := now.AddDate(0, 0, -3)
	for _, date := range []time.Time{now.AddDate(0, 0, -1), oldest} {
		d := date
		res := h.transactions.CreateTransaction(ctx, CreateTransactionRequest{
			ItemID:          stocked.ID,
			Quantity:        5,
			Type:            string(inventory.TransactionTypePurchase),
			TransactionDate: &d,
		})
		require.True(t, res.IsSuccess(), "unexpected error: %v", res.Error())
	}

	res := service.BuildDailyReport(ctx, now)

	require.True(t, res.IsSuccess(), "unexpected error: %v", res.Error())
	report := res.Value
	assert.Equal(t, now, report.GeneratedAt)
	assert.Equal(t, 2, report.PendingTransactions)
	require.NotNil(t, report.OldestPendingDate)
	assert.WithinDuration(t, oldest, *report.OldestPendingDate, time.Millisecond)

	require.Len(t, report.BelowReorderPoint, 1)
	assert.Equal(t, empty.ID, report.BelowReorderPoint[0].ID)

	require.Len(t, report.ExpiredPerishables, 1)
	assert.Equal(t, milk.Value.ID, report.ExpiredPerishables[0].ID)
}

func TestInventoryReportService_EmptyWarehouse(t *testing.T) {
	h := newHarness(t)

	res := NewInventoryReportService(h.factory, nil).BuildDailyReport(context.Background(), time.Now())

	require.True(t, res.IsSuccess())
	assert.Zero(t, res.Value.PendingTransactions)
	assert.Nil(t, res.Value.OldestPendingDate)
	assert.Empty(t, res.Value.BelowReorderPoint)
	assert.Empty(t, res.Value.ExpiredPerishables)
}
