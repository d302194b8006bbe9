package inventory

import (
	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// MovementType represents the business reason for a stock movement
type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeSale       MovementType = "sale"
	MovementTypeReturn     MovementType = "return"
	MovementTypeAdjustment MovementType = "adjustment"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeReturn, MovementTypeAdjustment:
		return true
	}
	return false
}

// NormalizeQuantity applies the sign convention for this movement type:
// purchase and return always increase stock, sale always decreases it,
// adjustment carries the caller's signed value unmodified.
func (t MovementType) NormalizeQuantity(quantity int64) int64 {
	switch t {
	case MovementTypePurchase, MovementTypeReturn:
		return abs(quantity)
	case MovementTypeSale:
		return -abs(quantity)
	default:
		return quantity
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// ReferenceType identifies the kind of source document a movement refers to
type ReferenceType string

const (
	ReferenceTypeOrder         ReferenceType = "Order"
	ReferenceTypePurchaseOrder ReferenceType = "PurchaseOrder"
)

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	return r == ReferenceTypeOrder || r == ReferenceTypePurchaseOrder
}

// Reference points a movement at the source document that caused it
type Reference struct {
	ID   uuid.UUID
	Type ReferenceType
}

// StockMovement is an immutable ledger entry describing one signed quantity
// change applied to a variant. Once written it is never mutated or deleted;
// corrections are made with new movements. A variant's stock always equals
// its initial value plus the signed sum of its movements.
type StockMovement struct {
	shared.BaseEntity
	TenantID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_movement_tenant_time,priority:1"`
	ProductID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_movement_product"`
	VariantID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_movement_variant"`
	VariantSKU    string        `gorm:"type:varchar(100);not null;index:idx_movement_sku"`
	MovementType  MovementType  `gorm:"type:varchar(20);not null;index:idx_movement_type"`
	Quantity      int64         `gorm:"not null"`
	PreviousStock int64         `gorm:"not null"`
	NewStock      int64         `gorm:"not null"`
	ReferenceID   *uuid.UUID    `gorm:"type:uuid;index"`
	ReferenceType ReferenceType `gorm:"type:varchar(30)"`
	Notes         string        `gorm:"type:varchar(500)"`
	CreatedBy     uuid.UUID     `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement record.
// quantity is the already-normalized signed delta; previousStock and newStock
// must come from the applied update result, never from a stale read.
func NewStockMovement(
	tenantID, productID, variantID uuid.UUID,
	variantSKU string,
	movementType MovementType,
	quantity, previousStock, newStock int64,
	createdBy uuid.UUID,
) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant ID cannot be empty")
	}
	if variantID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product and variant IDs are required")
	}
	if variantSKU == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Variant SKU cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid movement type: %s", movementType)
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Movement quantity cannot be zero")
	}
	if newStock < 0 {
		return nil, shared.ErrInsufficientStock
	}
	if previousStock+quantity != newStock {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Movement quantity does not match stock delta")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Creator is required")
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		ProductID:     productID,
		VariantID:     variantID,
		VariantSKU:    variantSKU,
		MovementType:  movementType,
		Quantity:      quantity,
		PreviousStock: previousStock,
		NewStock:      newStock,
		CreatedBy:     createdBy,
	}, nil
}

// WithReference links the movement to its source document
func (m *StockMovement) WithReference(ref *Reference) *StockMovement {
	if ref != nil {
		id := ref.ID
		m.ReferenceID = &id
		m.ReferenceType = ref.Type
	}
	return m
}

// WithNotes sets a free-form note on the movement
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// IsInbound returns true if the movement increased stock
func (m *StockMovement) IsInbound() bool {
	return m.Quantity > 0
}

// AbsoluteQuantity returns the unsigned magnitude of the movement
func (m *StockMovement) AbsoluteQuantity() int64 {
	return abs(m.Quantity)
}
