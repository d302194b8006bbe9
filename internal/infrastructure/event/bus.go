package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stocktrack/backend/internal/domain/shared"
	"github.com/stocktrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultBufferSize     = 256
	defaultHandlerTimeout = 10 * time.Second
)

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// Events are queued on a buffered channel and delivered by a single
// background goroutine. Publishers are never blocked and never see
// handler failures: events go out after the originating transaction
// has committed, so delivery is best effort and failures are logged.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	timeout  time.Duration

	mu      sync.RWMutex
	queue   chan shared.DomainEvent
	done    chan struct{}
	running atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(cfg *config.EventConfig, logger *zap.Logger) *InMemoryEventBus {
	bufferSize := defaultBufferSize
	timeout := defaultHandlerTimeout
	if cfg != nil {
		if cfg.BufferSize > 0 {
			bufferSize = cfg.BufferSize
		}
		if cfg.HandlerTimeout > 0 {
			timeout = cfg.HandlerTimeout
		}
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		timeout:  timeout,
		queue:    make(chan shared.DomainEvent, bufferSize),
	}
}

// Publish enqueues events for asynchronous delivery. When the bus is not
// running, or the queue is full, events are delivered inline so nothing
// is silently dropped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	// Delivery must not be cut short when the publishing request ends.
	ctx = context.WithoutCancel(ctx)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		if !b.running.Load() {
			b.dispatch(ctx, event)
			continue
		}
		select {
		case b.queue <- event:
		default:
			b.logger.Warn("event queue full, delivering inline",
				zap.String("event_type", event.EventType()),
			)
			b.dispatch(ctx, event)
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	// If handler specifies its own event types, use those
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the delivery goroutine. Starting an already running
// bus is a no-op; a stopped bus can be started again.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}
	b.mu.Lock()
	b.queue = make(chan shared.DomainEvent, cap(b.queue))
	queue := b.queue
	b.mu.Unlock()

	b.done = make(chan struct{})
	go b.deliveryLoop(queue)
	b.logger.Info("event bus started")
	return nil
}

// Stop closes the queue and waits until every queued event has been
// delivered, or until ctx expires.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}

	b.mu.Lock()
	close(b.queue)
	b.mu.Unlock()

	select {
	case <-b.done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stopped before the queue drained")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) deliveryLoop(queue <-chan shared.DomainEvent) {
	defer close(b.done)
	for event := range queue {
		b.dispatch(context.Background(), event)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			// Log error but continue with other handlers
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler safely dispatches an event to a handler
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
