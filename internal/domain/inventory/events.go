package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeVariant = "Variant"

// Event type constants
const (
	EventTypeStockChanged = "stock_changed"
)

// StockChangedEvent is raised after a committed stock mutation on a variant
type StockChangedEvent struct {
	shared.BaseDomainEvent
	VariantID     uuid.UUID    `json:"variant_id"`
	VariantSKU    string       `json:"variant_sku"`
	ProductID     uuid.UUID    `json:"product_id"`
	MovementType  MovementType `json:"movement_type"`
	Quantity      int64        `json:"quantity"`
	PreviousStock int64        `json:"previous_stock"`
	NewStock      int64        `json:"new_stock"`
	ReferenceID   string       `json:"reference_id,omitempty"`
	ReferenceType string       `json:"reference_type,omitempty"`
}

// NewStockChangedEvent creates a new StockChangedEvent from a recorded movement
func NewStockChangedEvent(movement *StockMovement) *StockChangedEvent {
	event := &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeVariant, movement.VariantID, movement.TenantID),
		VariantID:       movement.VariantID,
		VariantSKU:      movement.VariantSKU,
		ProductID:       movement.ProductID,
		MovementType:    movement.MovementType,
		Quantity:        movement.Quantity,
		PreviousStock:   movement.PreviousStock,
		NewStock:        movement.NewStock,
	}
	if movement.ReferenceID != nil {
		event.ReferenceID = movement.ReferenceID.String()
		event.ReferenceType = string(movement.ReferenceType)
	}
	return event
}

// EventType returns the event type name
func (e *StockChangedEvent) EventType() string {
	return EventTypeStockChanged
}

// Payload returns the flat key/value payload for external subscribers
func (e *StockChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"variant_id":     e.VariantID.String(),
		"variant_sku":    e.VariantSKU,
		"product_id":     e.ProductID.String(),
		"movement_type":  string(e.MovementType),
		"quantity":       e.Quantity,
		"previous_stock": e.PreviousStock,
		"new_stock":      e.NewStock,
		"reference_id":   e.ReferenceID,
		"reference_type": e.ReferenceType,
		"occurred_at":    e.OccurredAt().Format(time.RFC3339),
	}
}
