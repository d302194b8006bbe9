package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const subscriberBufferSize = 16

// Notification is the flat representation of a domain event delivered to
// tenant subscribers: ids as strings, timestamps ISO-8601.
type Notification struct {
	EventID       string                 `json:"event_id"`
	EventType     string                 `json:"event_type"`
	AggregateID   string                 `json:"aggregate_id"`
	AggregateType string                 `json:"aggregate_type"`
	OccurredAt    string                 `json:"occurred_at"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
}

// TenantNotifier fans domain events out to per-tenant subscriber channels.
// Delivery is non-blocking and at most once: a subscriber that cannot keep
// up loses notifications rather than stalling the bus.
type TenantNotifier struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Notification]struct{}
	logger      *zap.Logger
}

// NewTenantNotifier creates a notifier with no subscribers
func NewTenantNotifier(logger *zap.Logger) *TenantNotifier {
	return &TenantNotifier{
		subscribers: make(map[uuid.UUID]map[chan Notification]struct{}),
		logger:      logger,
	}
}

// Subscribe returns a channel receiving notifications for one tenant and a
// cancel function that closes it. Cancel is safe to call more than once.
func (n *TenantNotifier) Subscribe(tenantID uuid.UUID) (<-chan Notification, func()) {
	ch := make(chan Notification, subscriberBufferSize)

	n.mu.Lock()
	if n.subscribers[tenantID] == nil {
		n.subscribers[tenantID] = make(map[chan Notification]struct{})
	}
	n.subscribers[tenantID][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subscribers[tenantID], ch)
			if len(n.subscribers[tenantID]) == 0 {
				delete(n.subscribers, tenantID)
			}
			n.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Handle converts the event to a Notification and offers it to every
// subscriber of the event's tenant
func (n *TenantNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	notification := Notification{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID().String(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt().Format(time.RFC3339),
	}
	if carrier, ok := event.(shared.PayloadCarrier); ok {
		notification.Payload = carrier.Payload()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subscribers[event.TenantID()] {
		select {
		case ch <- notification:
		default:
			n.logger.Debug("subscriber channel full, notification dropped",
				zap.String("tenant_id", event.TenantID().String()),
				zap.String("event_type", event.EventType()),
			)
		}
	}
	return nil
}

// EventTypes returns nil so the notifier receives every event
func (n *TenantNotifier) EventTypes() []string {
	return nil
}

// SubscriberCount reports how many channels a tenant currently holds
func (n *TenantNotifier) SubscriberCount(tenantID uuid.UUID) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers[tenantID])
}

var _ shared.EventHandler = (*TenantNotifier)(nil)
