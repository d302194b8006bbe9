package purchase

import (
	"time"

	"github.com/stocktrack/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "purchase_order_created"
	EventTypePurchaseOrderStatusChanged = "purchase_order_status_changed"
	EventTypeReceiptRecorded            = "receipt_recorded"
)

// PurchaseOrderCreatedEvent is raised when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber     string `json:"po_number"`
	SupplierName string `json:"supplier_name"`
	LineCount    int    `json:"line_count"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		PONumber:        order.PONumber,
		SupplierName:    order.SupplierName,
		LineCount:       len(order.Lines),
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCreatedEvent) EventType() string {
	return EventTypePurchaseOrderCreated
}

// Payload returns the flat key/value payload for external subscribers
func (e *PurchaseOrderCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"purchase_order_id": e.AggregateID().String(),
		"po_number":         e.PONumber,
		"supplier_name":     e.SupplierName,
		"line_count":        e.LineCount,
		"occurred_at":       e.OccurredAt().Format(time.RFC3339),
	}
}

// PurchaseOrderStatusChangedEvent is raised on every status transition,
// including the automatic transition to received
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PONumber   string              `json:"po_number"`
	FromStatus PurchaseOrderStatus `json:"from_status"`
	ToStatus   PurchaseOrderStatus `json:"to_status"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(order *PurchaseOrder, from, to PurchaseOrderStatus) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		PONumber:        order.PONumber,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderStatusChangedEvent) EventType() string {
	return EventTypePurchaseOrderStatusChanged
}

// Payload returns the flat key/value payload for external subscribers
func (e *PurchaseOrderStatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"purchase_order_id": e.AggregateID().String(),
		"po_number":         e.PONumber,
		"from_status":       string(e.FromStatus),
		"to_status":         string(e.ToStatus),
		"occurred_at":       e.OccurredAt().Format(time.RFC3339),
	}
}

// ReceiptRecordedEvent is raised when a receipt is recorded against an order
type ReceiptRecordedEvent struct {
	shared.BaseDomainEvent
	PONumber      string `json:"po_number"`
	ReceiptNumber string `json:"receipt_number"`
	EntryCount    int    `json:"entry_count"`
	TotalQuantity int64  `json:"total_quantity"`
}

// NewReceiptRecordedEvent creates a new ReceiptRecordedEvent
func NewReceiptRecordedEvent(order *PurchaseOrder, receipt *Receipt) *ReceiptRecordedEvent {
	return &ReceiptRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptRecorded, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		PONumber:        order.PONumber,
		ReceiptNumber:   receipt.ReceiptNumber,
		EntryCount:      len(receipt.Entries),
		TotalQuantity:   receipt.TotalQuantity(),
	}
}

// EventType returns the event type name
func (e *ReceiptRecordedEvent) EventType() string {
	return EventTypeReceiptRecorded
}

// Payload returns the flat key/value payload for external subscribers
func (e *ReceiptRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"purchase_order_id": e.AggregateID().String(),
		"po_number":         e.PONumber,
		"receipt_number":    e.ReceiptNumber,
		"entry_count":       e.EntryCount,
		"total_quantity":    e.TotalQuantity,
		"occurred_at":       e.OccurredAt().Format(time.RFC3339),
	}
}
