package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// Variant represents a single sellable SKU (product + size + color) and owns
// the quantity state for it. It is the aggregate root for stock operations.
//
// Invariant, enforced on every write: 0 <= ReservedStock <= Stock.
// Quantities are mutated exclusively through VariantRepository.ApplyDelta;
// no other code path may assign Stock or ReservedStock directly.
type Variant struct {
	shared.TenantAggregateRoot
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU           string    `gorm:"type:varchar(100);not null;index"`
	Size          string    `gorm:"type:varchar(50);not null"`
	Color         string    `gorm:"type:varchar(50);not null"`
	Stock         int64     `gorm:"not null;default:0"`
	ReservedStock int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "variants"
}

// NewVariant creates a new variant for a product.
// The SKU is normalized to uppercase; initial quantities must satisfy the
// reservation invariant.
func NewVariant(tenantID, productID uuid.UUID, sku, size, color string, stock, reservedStock int64) (*Variant, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID cannot be empty")
	}
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU cannot be empty")
	}
	if size == "" || color == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Size and color are required")
	}
	if stock < 0 || reservedStock < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stock quantities cannot be negative")
	}
	if reservedStock > stock {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reserved stock cannot exceed total stock")
	}

	return &Variant{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		SKU:                 sku,
		Size:                strings.TrimSpace(size),
		Color:               strings.TrimSpace(color),
		Stock:               stock,
		ReservedStock:       reservedStock,
	}, nil
}

// AvailableStock returns the sellable remainder: stock minus reservations,
// never negative.
func (v *Variant) AvailableStock() int64 {
	available := v.Stock - v.ReservedStock
	if available < 0 {
		return 0
	}
	return available
}

// CheckDelta reports whether applying the given deltas would preserve the
// variant invariants, returning the specific domain error a writer would
// observe. Repositories use it to classify a failed conditional update.
func (v *Variant) CheckDelta(stockDelta, reservedDelta int64) error {
	newStock := v.Stock + stockDelta
	newReserved := v.ReservedStock + reservedDelta

	if newStock < 0 {
		return shared.ErrInsufficientStock
	}
	if newReserved < 0 {
		return shared.ErrInsufficientReservedStock
	}
	if newReserved > newStock {
		return shared.ErrInsufficientAvailableStock
	}
	return nil
}

// CanFulfill returns true if the available quantity can cover the requested quantity
func (v *Variant) CanFulfill(quantity int64) bool {
	return v.AvailableStock() >= quantity
}

// HasAvailableStock returns true if there is any available stock
func (v *Variant) HasAvailableStock() bool {
	return v.AvailableStock() > 0
}
