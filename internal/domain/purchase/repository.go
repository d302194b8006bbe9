package purchase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// PurchaseOrderFilter narrows purchase order list queries
type PurchaseOrderFilter struct {
	shared.Filter
	Status       *PurchaseOrderStatus
	SupplierName string
	StartDate    *time.Time
	EndDate      *time.Time
}

// PendingLineQuantity is the open quantity on a line of a not-yet-received
// order, used for incoming stock projections
type PendingLineQuantity struct {
	VariantID       uuid.UUID
	PendingQuantity int64
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByIDForTenant finds an order with its lines by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds an order by its PO number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*PurchaseOrder, error)

	// FindForTenant finds orders matching the filter, newest first
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderFilter) ([]PurchaseOrder, error)

	// CountForTenant counts orders matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderFilter) (int64, error)

	// CountByNumberPrefix counts orders whose PO number starts with the given
	// prefix, used for daily sequence numbering
	CountByNumberPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)

	// PendingQuantities sums ordered-minus-received per variant over all
	// orders of the tenant that are not yet received
	PendingQuantities(ctx context.Context, tenantID uuid.UUID) ([]PendingLineQuantity, error)

	// Create inserts a new order with its lines; a PO number collision
	// surfaces ErrDuplicateKey
	Create(ctx context.Context, order *PurchaseOrder) error

	// Save updates an order and its lines with optimistic locking
	Save(ctx context.Context, order *PurchaseOrder) error

	// DeleteForTenant deletes an order with its lines within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ReceiptRepository defines the append-only interface for receipts
type ReceiptRepository interface {
	// Create inserts a new receipt with its entries; a receipt number
	// collision surfaces ErrDuplicateKey
	Create(ctx context.Context, receipt *Receipt) error

	// FindByIDForTenant finds a receipt with its entries by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error)

	// FindByPurchaseOrder finds all receipts for an order, oldest first
	FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]Receipt, error)

	// CountByNumberPrefix counts receipts whose number starts with the given
	// prefix, used for daily sequence numbering
	CountByNumberPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)

	// DeleteByPurchaseOrder deletes all receipts of an order, used only when
	// deleting a draft order
	DeleteByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) error
}
