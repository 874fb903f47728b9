package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newTestEvent("CriticalStockLevelReached")
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	h := NewIdempotentHandler("alerts", inner, store, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	stats := h.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_ConsumersAreIndependent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	event := newTestEvent("CriticalStockLevelReached")
	first := new(MockEventHandler)
	first.On("Handle", mock.Anything, event).Return(nil).Once()
	second := new(MockEventHandler)
	second.On("Handle", mock.Anything, event).Return(nil).Once()

	require.NoError(t, NewIdempotentHandler("alerts", first, store, zap.NewNop()).Handle(context.Background(), event))
	require.NoError(t, NewIdempotentHandler("audit", second, store, zap.NewNop()).Handle(context.Background(), event))

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestIdempotentHandler_KeyIncludesConsumer(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newTestEvent("X")
	store.On("MarkProcessed", mock.Anything, "alerts:"+event.EventID().String(), 2*time.Hour).Return(true, nil)
	inner.On("Handle", mock.Anything, event).Return(nil)

	h := NewIdempotentHandler("alerts", inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{TTL: 2 * time.Hour, Enabled: true}),
	)

	require.NoError(t, h.Handle(context.Background(), event))
	store.AssertExpectations(t)
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newTestEvent("X")
	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	inner.On("Handle", mock.Anything, event).Return(nil)

	h := NewIdempotentHandler("alerts", inner, store, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), event))
	inner.AssertNumberOfCalls(t, "Handle", 1)
}

func TestIdempotentHandler_HandlerErrorIsReturned(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	inner := new(MockEventHandler)
	event := newTestEvent("X")
	inner.On("Handle", mock.Anything, event).Return(errors.New("notify failed"))

	h := NewIdempotentHandler("alerts", inner, store, zap.NewNop())

	assert.Error(t, h.Handle(context.Background(), event))
	assert.Equal(t, int64(1), h.GetMetrics().Stats().EventsFailed)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newTestEvent("X")
	inner.On("Handle", mock.Anything, event).Return(nil).Twice()

	h := NewIdempotentHandler("alerts", inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_DelegatesEventTypes(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{"A"})

	h := NewIdempotentHandler("alerts", inner, nil, zap.NewNop())

	assert.Equal(t, []string{"A"}, h.EventTypes())
}
