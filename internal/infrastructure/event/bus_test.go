package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

// recordingHandler appends handled event IDs to a shared journal so ordering across handlers is visible
type recordingHandler struct {
	name       string
	eventTypes []string
	journal    *[]string
	mu         *sync.Mutex
	err        error
	panics     bool
}

func newRecordingHandler(name string, journal *[]string, mu *sync.Mutex, eventTypes ...string) *recordingHandler {
	return &recordingHandler{name: name, eventTypes: eventTypes, journal: journal, mu: mu}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	*h.journal = append(*h.journal, h.name+":"+event.EventType())
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func TestInMemoryEventBus_PublishOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var (
		journal []string
		mu      sync.Mutex
	)
	first := newRecordingHandler("first", &journal, &mu, "A", "B")
	second := newRecordingHandler("second", &journal, &mu, "A")
	bus.Subscribe(first)
	bus.Subscribe(second)

	err := bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B"), newTestEvent("C"))

	require.NoError(t, err)
	assert.Equal(t, []string{"first:A", "second:A", "first:B"}, journal)
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var (
		journal []string
		mu      sync.Mutex
	)
	bus.Subscribe(newRecordingHandler("all", &journal, &mu))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("Anything")))

	assert.Equal(t, []string{"all:Anything"}, journal)
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDispatch(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	var (
		journal []string
		mu      sync.Mutex
	)
	failing := newRecordingHandler("failing", &journal, &mu, "A")
	failing.err = errors.New("handler error")
	panicking := newRecordingHandler("panicking", &journal, &mu, "A")
	panicking.panics = true
	healthy := newRecordingHandler("healthy", &journal, &mu, "A")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("A"))

	require.NoError(t, err)
	assert.Equal(t, []string{"failing:A", "panicking:A", "healthy:A"}, journal)
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())

	published, failures := bus.Stats()
	assert.Equal(t, int64(1), published)
	assert.Equal(t, int64(2), failures)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var (
		journal []string
		mu      sync.Mutex
	)
	h := newRecordingHandler("h", &journal, &mu, "A")
	bus.Subscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("A"))

	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("A"))

	assert.Len(t, journal, 1)
}

func TestInMemoryEventBus_SkipsNilEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	assert.NoError(t, bus.Publish(context.Background(), nil))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())

	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.IsRunning())
}

func TestInMemoryEventBus_TracesHandlers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	bus := NewInMemoryEventBus(zap.NewNop(), WithTracer(tp.Tracer("test")))
	var (
		journal []string
		mu      sync.Mutex
	)
	failing := newRecordingHandler("failing", &journal, &mu, "A")
	failing.err = errors.New("nope")
	bus.Subscribe(failing)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "event.handle A", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1, "error is recorded on the span")
}

type countingPublishObserver struct {
	seen []string
}

func (o *countingPublishObserver) RecordPublished(_ context.Context, eventType string) {
	o.seen = append(o.seen, eventType)
}

func TestInMemoryEventBus_PublishObserver(t *testing.T) {
	obs := &countingPublishObserver{}
	bus := NewInMemoryEventBus(zap.NewNop(), WithPublishObserver(obs))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), nil, newTestEvent("B")))

	assert.Equal(t, []string{"A", "B"}, obs.seen, "unhandled events are still counted")
}
