package inventory

import (
	"testing"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInboundTransaction(t *testing.T) {
	itemID := uuid.New()

	t.Run("creates purchase", func(t *testing.T) {
		tx, err := NewInboundTransaction(itemID, 50, "A1", TransactionTypePurchase)

		require.NoError(t, err)
		assert.Equal(t, itemID, tx.ItemID())
		assert.Equal(t, 50, tx.Quantity())
		assert.Nil(t, tx.SourceLocation())
		require.NotNil(t, tx.DestinationLocation())
		assert.Equal(t, "A1", *tx.DestinationLocation())
		assert.False(t, tx.IsCompleted())
		assert.True(t, tx.IsStockIncrease())
		assert.True(t, tx.AffectsStock())
		assert.Regexp(t, `^IN-\d{8}-[0-9A-F]{8}$`, tx.Reference().Value())
		assert.Equal(t, tx.GetCreatedAt(), tx.TransactionDate())

		events := tx.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*TransactionCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, tx.ID, created.TransactionID)
		assert.Equal(t, 50, created.Quantity)
		assert.Equal(t, tx.Reference().Value(), created.Reference)
	})

	t.Run("rejects outbound type", func(t *testing.T) {
		tx, err := NewInboundTransaction(itemID, 50, "A1", TransactionTypeSale)

		require.Error(t, err)
		assert.Nil(t, tx)
		assert.Equal(t, codeInvalidTransactionType, shared.ErrorCode(err))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		for _, qty := range []int{0, -5} {
			_, err := NewInboundTransaction(itemID, qty, "A1", TransactionTypePurchase)

			require.Error(t, err)
			assert.Equal(t, "Quantity must be greater than zero", err.Error())
			assert.Equal(t, codeInvalidQuantity, shared.ErrorCode(err))
		}
	})

	t.Run("rejects blank destination", func(t *testing.T) {
		_, err := NewInboundTransaction(itemID, 5, " ", TransactionTypeReturn)

		require.Error(t, err)
	})

	t.Run("honours explicit date and batch", func(t *testing.T) {
		date := time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC)
		batch, err := NewBatchInformation("B-1", date.AddDate(0, -1, 0), date.AddDate(1, 0, 0))
		require.NoError(t, err)

		tx, err := NewInboundTransaction(itemID, 5, "A1", TransactionTypeTransferIn, WithTransactionDate(date), WithBatch(batch))

		require.NoError(t, err)
		assert.True(t, tx.TransactionDate().Equal(date))
		require.NotNil(t, tx.BatchInformation())
		assert.Equal(t, "B-1", tx.BatchInformation().BatchNumber())
	})
}

func TestNewOutboundTransaction(t *testing.T) {
	itemID := uuid.New()

	tx, err := NewOutboundTransaction(itemID, 20, "A1", TransactionTypeSale)
	require.NoError(t, err)
	assert.Nil(t, tx.DestinationLocation())
	assert.Equal(t, "A1", *tx.SourceLocation())
	assert.Equal(t, -20, tx.SignedQuantity())
	assert.False(t, tx.IsStockIncrease())
	assert.Regexp(t, `^OUT-`, tx.Reference().Value())

	_, err = NewOutboundTransaction(itemID, 20, "A1", TransactionTypePurchase)
	require.Error(t, err)
	assert.Equal(t, codeInvalidTransactionType, shared.ErrorCode(err))

	_, err = NewOutboundTransaction(itemID, 20, "A1", TransactionTypeLocationTransfer)
	assert.Error(t, err)
}

func TestNewInternalTransaction(t *testing.T) {
	itemID := uuid.New()

	tx, err := NewInternalTransaction(itemID, 5, "A1", "B1", TransactionTypeLocationTransfer)
	require.NoError(t, err)
	assert.Equal(t, 0, tx.SignedQuantity())
	assert.True(t, tx.AffectsStock())
	assert.Regexp(t, `^INT-`, tx.Reference().Value())

	qc, err := NewInternalTransaction(itemID, 5, "A1", "QC", TransactionTypeQualityStatusChange)
	require.NoError(t, err)
	assert.False(t, qc.AffectsStock())

	_, err = NewInternalTransaction(itemID, 5, "A1", "", TransactionTypeLocationTransfer)
	assert.Error(t, err)

	_, err = NewInternalTransaction(itemID, 5, "A1", "B1", TransactionTypeSale)
	assert.Error(t, err)
}

func TestTransaction_Complete(t *testing.T) {
	tx, err := NewInboundTransaction(uuid.New(), 10, "A1", TransactionTypePurchase)
	require.NoError(t, err)
	tx.ClearDomainEvents()
	version := tx.GetVersion()

	tx.Complete()
	tx.Complete()

	assert.True(t, tx.IsCompleted())
	assert.Equal(t, version+2, tx.GetVersion())

	events := tx.GetDomainEvents()
	require.Len(t, events, 2)
	completed, ok := events[0].(*TransactionCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, tx.ID, completed.TransactionID)
	assert.Equal(t, tx.ItemID(), completed.ItemID)
	assert.Equal(t, TransactionTypePurchase, completed.TransactionType)
	assert.Nil(t, completed.SourceLocation)
	require.NotNil(t, completed.DestinationLocation)
	assert.Equal(t, "A1", *completed.DestinationLocation)
	assert.Equal(t, EventTypeTransactionCompleted, completed.EventType())
	assert.Equal(t, AggregateTypeTransaction, completed.AggregateType())
}

func TestTransactionType_Classification(t *testing.T) {
	cases := []struct {
		txType    TransactionType
		direction Direction
		impact    int
		prefix    string
	}{
		{TransactionTypePurchase, DirectionInbound, 1, ReferencePrefixInbound},
		{TransactionTypeReturn, DirectionInbound, 1, ReferencePrefixInbound},
		{TransactionTypeTransferIn, DirectionInbound, 1, ReferencePrefixInbound},
		{TransactionTypeSale, DirectionOutbound, -1, ReferencePrefixOutbound},
		{TransactionTypeConsumption, DirectionOutbound, -1, ReferencePrefixOutbound},
		{TransactionTypeTransferOut, DirectionOutbound, -1, ReferencePrefixOutbound},
		{TransactionTypeQualityStatusChange, DirectionInternal, 0, ReferencePrefixInternal},
		{TransactionTypeLocationTransfer, DirectionInternal, 0, ReferencePrefixInternal},
	}

	for _, tc := range cases {
		t.Run(tc.txType.String(), func(t *testing.T) {
			assert.True(t, tc.txType.IsValid())
			assert.Equal(t, tc.direction, tc.txType.Direction())
			assert.Equal(t, tc.impact, tc.txType.StockImpact())
			assert.Equal(t, tc.prefix, tc.txType.ReferencePrefix())
		})
	}

	assert.False(t, TransactionType("GIFT").IsValid())
	_, err := ParseTransactionType("GIFT")
	assert.Error(t, err)

	parsed, err := ParseTransactionType("SALE")
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeSale, parsed)
}

func TestReconstituteTransaction(t *testing.T) {
	id := uuid.New()
	itemID := uuid.New()
	src := "A1"
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tx := ReconstituteTransaction(TransactionSnapshot{
		ID:              id,
		Version:         2,
		Reference:       "OUT-20240501-ABCDEF12",
		Type:            TransactionTypeConsumption,
		ItemID:          itemID,
		Quantity:        4,
		SourceLocation:  &src,
		TransactionDate: date,
		IsCompleted:     true,
	})

	assert.Equal(t, id, tx.ID)
	assert.Equal(t, "OUT-20240501-ABCDEF12", tx.Reference().Value())
	assert.True(t, tx.IsCompleted())
	assert.Equal(t, -4, tx.SignedQuantity())
	assert.Empty(t, tx.GetDomainEvents())
}
