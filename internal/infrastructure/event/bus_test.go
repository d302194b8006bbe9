package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
	"github.com/stocktrack/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), tenantID),
		Data:            "test data",
	}
}

func (e *testEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"data": e.Data}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) handledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func newTestBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(&config.EventConfig{BufferSize: 16, HandlerTimeout: time.Second}, zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})
	return bus
}

func waitHandled(t *testing.T, handler *testHandler, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return handler.handledCount() == want
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := newTestBus(t)

	handler := newTestHandler("stock_changed")
	bus.Subscribe(handler, "stock_changed")

	event := newTestEvent("stock_changed", uuid.New())
	require.NoError(t, bus.Publish(context.Background(), event))

	waitHandled(t, handler, 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	bus := newTestBus(t)

	handler := newTestHandler("stock_changed")
	bus.Subscribe(handler, "stock_changed")

	event1 := newTestEvent("stock_changed", uuid.New())
	event2 := newTestEvent("stock_changed", uuid.New())
	require.NoError(t, bus.Publish(context.Background(), event1, event2))

	waitHandled(t, handler, 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := newTestBus(t)

	handler1 := newTestHandler("receipt_recorded")
	handler2 := newTestHandler("receipt_recorded")
	bus.Subscribe(handler1, "receipt_recorded")
	bus.Subscribe(handler2, "receipt_recorded")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("receipt_recorded", uuid.New())))

	waitHandled(t, handler1, 1)
	waitHandled(t, handler2, 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := newTestBus(t)

	wildcardHandler := newTestHandler() // No event types = all events
	bus.Subscribe(wildcardHandler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock_changed", uuid.New())))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("purchase_order_created", uuid.New())))

	waitHandled(t, wildcardHandler, 2)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := newTestBus(t)

	failing := newTestHandler("stock_changed")
	failing.setError(errors.New("handler error"))
	healthy := newTestHandler("stock_changed")
	bus.Subscribe(failing, "stock_changed")
	bus.Subscribe(healthy, "stock_changed")

	// A failing handler must neither surface to the publisher nor
	// starve the other handlers
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock_changed", uuid.New())))

	waitHandled(t, failing, 1)
	waitHandled(t, healthy, 1)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	bus := newTestBus(t)

	handler := newTestHandler("receipt_recorded")
	bus.Subscribe(handler, "receipt_recorded")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock_changed", uuid.New())))

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, handler.handledCount())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := newTestBus(t)

	handler := newTestHandler("stock_changed")
	bus.Subscribe(handler, "stock_changed")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock_changed", uuid.New())))
	waitHandled(t, handler, 1)

	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock_changed", uuid.New())))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, handler.handledCount())
}

func TestInMemoryEventBus_PublishBeforeStart_DeliversInline(t *testing.T) {
	bus := NewInMemoryEventBus(&config.EventConfig{BufferSize: 16, HandlerTimeout: time.Second}, zap.NewNop())

	handler := newTestHandler("stock_changed")
	bus.Subscribe(handler, "stock_changed")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock_changed", uuid.New())))

	// No goroutine is involved before Start, delivery is synchronous
	assert.Equal(t, 1, handler.handledCount())
}

func TestInMemoryEventBus_Stop_DrainsQueue(t *testing.T) {
	bus := NewInMemoryEventBus(&config.EventConfig{BufferSize: 64, HandlerTimeout: time.Second}, zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("stock_changed")
	bus.Subscribe(handler, "stock_changed")

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock_changed", uuid.New())))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	assert.Equal(t, 10, handler.handledCount())
}

func TestInMemoryEventBus_StartStop_Idempotent(t *testing.T) {
	bus := NewInMemoryEventBus(nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Stop(ctx))
}
