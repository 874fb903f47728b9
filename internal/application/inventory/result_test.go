package inventory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantCode string
	}{
		{"not found", shared.ErrNotFound, ErrorTypeNotFound, "NOT_FOUND"},
		{"already exists", shared.ErrAlreadyExists, ErrorTypeConflict, "ALREADY_EXISTS"},
		{"concurrency conflict", fmt.Errorf("save: %w", shared.ErrConcurrencyConflict), ErrorTypeConflict, "CONCURRENCY_CONFLICT"},
		{"insufficient stock", shared.ErrInsufficientStock, ErrorTypeValidation, "INSUFFICIENT_STOCK"},
		{"invalid stock level", shared.NewDomainError("INVALID_STOCK_LEVEL", "bad"), ErrorTypeValidation, "INVALID_STOCK_LEVEL"},
		{"invalid state", shared.ErrInvalidState, ErrorTypeValidation, "INVALID_STATE"},
		{"plain error", errors.New("disk full"), ErrorTypeUnexpected, "UNEXPECTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("app error passes through", func(t *testing.T) {
		original := NewNotFoundError("gone")
		assert.Same(t, original, FromError(fmt.Errorf("wrapped: %w", original)))
	})

	t.Run("domain parse error keeps message", func(t *testing.T) {
		_, err := inventory.ParseItemType("GADGET")
		appErr := FromError(err)
		assert.Equal(t, ErrorTypeValidation, appErr.Type)
		assert.Equal(t, "INVALID_ITEM_TYPE", appErr.Code)
		assert.Contains(t, appErr.Message, "GADGET")
	})
}

func TestResult(t *testing.T) {
	ok := Success(42)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	assert.NoError(t, ok.Error())
	assert.Equal(t, 42, ok.Value)

	failed := Failure[int](shared.ErrNotFound)
	assert.True(t, failed.IsFailure())
	assert.Zero(t, failed.Value)
	require.Error(t, failed.Error())

	var appErr *AppError
	require.ErrorAs(t, failed.Error(), &appErr)
	assert.Equal(t, ErrorTypeNotFound, appErr.Type)
}

func TestValidationFailure(t *testing.T) {
	t.Run("json field names and first message", func(t *testing.T) {
		err := validateRequest(CreateItemRequest{
			Name:            "Bolt",
			Type:            "RAW_MATERIAL",
			MaximumQuantity: 10,
			ReorderPoint:    5,
		})
		require.Error(t, err)

		appErr := FromError(err)
		assert.Equal(t, ErrorTypeValidation, appErr.Type)
		assert.Equal(t, "INVALID_INPUT", appErr.Code)
		assert.Equal(t, "sku: This field is required", appErr.Message)
		require.Len(t, appErr.Details, 1)
		assert.Equal(t, "sku", appErr.Details[0].Field)
	})

	t.Run("custom enum tags", func(t *testing.T) {
		err := validateRequest(CreateTransactionRequest{
			ItemID:   uuid.New(),
			Quantity: 1,
			Type:     "GIFT",
		})
		appErr := FromError(err)
		require.Len(t, appErr.Details, 1)
		assert.Equal(t, "type", appErr.Details[0].Field)
		assert.Equal(t, "Invalid transaction type", appErr.Details[0].Message)
	})

	t.Run("threshold ordering", func(t *testing.T) {
		req := newCreateItemRequest("ORD-1")
		req.ReorderPoint = 150
		appErr := FromError(validateRequest(req))
		require.NotEmpty(t, appErr.Details)
		assert.Equal(t, "reorder_point", appErr.Details[0].Field)
		assert.Equal(t, "Must be less than or equal to MaximumQuantity", appErr.Details[0].Message)
	})

	t.Run("batch expiry after manufacturing", func(t *testing.T) {
		batch := BatchRequest{BatchNumber: "B-1"}
		batch.ManufacturingDate = fixedTime
		batch.ExpiryDate = fixedTime.AddDate(0, 0, -1)
		appErr := FromError(validateRequest(batch))
		require.NotEmpty(t, appErr.Details)
		assert.Equal(t, "expiry_date", appErr.Details[0].Field)
	})
}
