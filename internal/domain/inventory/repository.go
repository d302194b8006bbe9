package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// VariantRepository defines the interface for variant persistence.
// All operations are tenant-scoped; an unscoped read or write is a defect.
type VariantRepository interface {
	// FindByIDForTenant finds a variant by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Variant, error)

	// FindBySKU finds a variant by its SKU within a tenant
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Variant, error)

	// FindByProductAndSKU finds a variant by product and SKU within a tenant
	FindByProductAndSKU(ctx context.Context, tenantID, productID uuid.UUID, sku string) (*Variant, error)

	// FindByProduct finds all variants of a product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]Variant, error)

	// FindAllForTenant finds all variants for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Variant, error)

	// FindBelowStock finds variants whose on-hand stock is below the threshold
	FindBelowStock(ctx context.Context, tenantID uuid.UUID, threshold int64, limit int) ([]Variant, error)

	// Create inserts a new variant; a uniqueness violation surfaces ErrDuplicateKey
	Create(ctx context.Context, variant *Variant) error

	// Save updates variant identity fields (never quantities; see ApplyDelta)
	Save(ctx context.Context, variant *Variant) error

	// ApplyDelta atomically applies stock and reservation deltas as a single
	// conditional write. The write succeeds only if, at write time,
	// stock+stockDelta >= 0, reserved+reservedDelta >= 0 and
	// reserved+reservedDelta <= stock+stockDelta; otherwise it fails with the
	// matching domain error and no partial effect. Returns the updated variant.
	ApplyDelta(ctx context.Context, tenantID, id uuid.UUID, stockDelta, reservedDelta int64) (*Variant, error)

	// DeleteForTenant deletes a variant within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts variants for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// MovementFilter narrows ledger queries
type MovementFilter struct {
	shared.Filter
	ProductID    *uuid.UUID
	VariantID    *uuid.UUID
	VariantSKU   string
	MovementType *MovementType
	StartDate    *time.Time
	EndDate      *time.Time
}

// ProductSales aggregates sold quantity per product
type ProductSales struct {
	ProductID         uuid.UUID
	TotalQuantitySold int64
}

// DailyMovementTotal aggregates absolute moved quantity per day and type.
// Date uses the 2006-01-02 layout.
type DailyMovementTotal struct {
	Date          string
	MovementType  MovementType
	TotalQuantity int64
}

// StockMovementRepository defines the append-only interface for the movement
// ledger. There is deliberately no update or delete operation.
type StockMovementRepository interface {
	// Append inserts a new movement record
	Append(ctx context.Context, movement *StockMovement) error

	// FindByVariant finds movements for a variant, newest first
	FindByVariant(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindForTenant finds movements for a tenant with filtering and pagination
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]StockMovement, error)

	// CountForTenant counts movements matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) (int64, error)

	// SumQuantityByVariant returns the signed sum of all movement quantities
	// for a variant (ledger replay value)
	SumQuantityByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int64, error)

	// SumSalesByProduct sums absolute sale quantities per product since the
	// given time, ordered descending, at most limit rows
	SumSalesByProduct(ctx context.Context, tenantID uuid.UUID, since time.Time, limit int) ([]ProductSales, error)

	// DailyTotalsByType returns absolute moved quantity grouped by day and
	// movement type within [start, end)
	DailyTotalsByType(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]DailyMovementTotal, error)
}
