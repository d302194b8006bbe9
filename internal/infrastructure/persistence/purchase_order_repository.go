package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/purchase"
	"github.com/stocktrack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByIDForTenant finds an order with its lines by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	var order purchase.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds an order by its PO number within a tenant
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, poNumber string) (*purchase.PurchaseOrder, error) {
	var order purchase.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND po_number = ?", tenantID, poNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindForTenant finds orders matching the filter, newest first
func (r *GormPurchaseOrderRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter purchase.PurchaseOrderFilter) ([]purchase.PurchaseOrder, error) {
	var orders []purchase.PurchaseOrder
	query := r.orderQuery(ctx, tenantID, filter).Preload("Lines")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountForTenant counts orders matching the filter
func (r *GormPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter purchase.PurchaseOrderFilter) (int64, error) {
	var count int64
	if err := r.orderQuery(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByNumberPrefix counts orders whose PO number starts with the prefix
func (r *GormPurchaseOrderRepository) CountByNumberPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&purchase.PurchaseOrder{}).
		Where("tenant_id = ? AND po_number LIKE ?", tenantID, prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PendingQuantities sums ordered-minus-received per variant over every order
// of the tenant that has not yet been received
func (r *GormPurchaseOrderRepository) PendingQuantities(ctx context.Context, tenantID uuid.UUID) ([]purchase.PendingLineQuantity, error) {
	var rows []struct {
		VariantID uuid.UUID
		Pending   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&purchase.PurchaseOrderLine{}).
		Select("purchase_order_lines.variant_id, COALESCE(SUM(purchase_order_lines.quantity_ordered - purchase_order_lines.quantity_received), 0) as pending").
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_lines.purchase_order_id").
		Where("purchase_order_lines.tenant_id = ? AND purchase_orders.status <> ?", tenantID, purchase.PurchaseOrderStatusReceived).
		Group("purchase_order_lines.variant_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	pending := make([]purchase.PendingLineQuantity, 0, len(rows))
	for _, row := range rows {
		if row.Pending <= 0 {
			continue
		}
		pending = append(pending, purchase.PendingLineQuantity{
			VariantID:       row.VariantID,
			PendingQuantity: row.Pending,
		})
	}
	return pending, nil
}

// Create inserts a new order with its lines
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *purchase.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicateKey
		}
		return err
	}
	order.MarkPersisted()
	return nil
}

// Save updates an order and its lines, guarded by the optimistic lock
// version. Lines are updated in place rather than replaced; receipt entries
// reference line rows by foreign key, so deleting a line that has receipts
// would be rejected by the database.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *purchase.PurchaseOrder) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(order).
			Where("tenant_id = ? AND id = ? AND version = ?", order.TenantID, order.ID, order.StoredVersion()).
			Updates(map[string]interface{}{
				"supplier_name":          order.SupplierName,
				"status":                 order.Status,
				"order_date":             order.OrderDate,
				"expected_delivery_date": order.ExpectedDeliveryDate,
				"notes":                  order.Notes,
				"total_amount":           order.TotalAmount,
				"received_at":            order.ReceivedAt,
				"version":                order.Version,
				"updated_at":             order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		keptIDs := make([]uuid.UUID, len(order.Lines))
		for idx := range order.Lines {
			keptIDs[idx] = order.Lines[idx].ID
		}
		removed := tx.Where("tenant_id = ? AND purchase_order_id = ?", order.TenantID, order.ID)
		if len(keptIDs) > 0 {
			removed = removed.Where("id NOT IN ?", keptIDs)
		}
		if err := removed.Delete(&purchase.PurchaseOrderLine{}).Error; err != nil {
			return err
		}

		for idx := range order.Lines {
			line := &order.Lines[idx]
			update := tx.Model(&purchase.PurchaseOrderLine{}).
				Where("tenant_id = ? AND id = ?", order.TenantID, line.ID).
				Updates(map[string]interface{}{
					"product_id":        line.ProductID,
					"variant_id":        line.VariantID,
					"variant_sku":       line.VariantSKU,
					"quantity_ordered":  line.QuantityOrdered,
					"quantity_received": line.QuantityReceived,
					"expected_price":    line.ExpectedPrice,
					"updated_at":        line.UpdatedAt,
				})
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				if err := tx.Create(line).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.MarkPersisted()
	return nil
}

// DeleteForTenant deletes an order with its lines within a tenant
func (r *GormPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND purchase_order_id = ?", tenantID, id).Delete(&purchase.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&purchase.PurchaseOrder{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// orderQuery builds the base filtered query for purchase orders
func (r *GormPurchaseOrderRepository) orderQuery(ctx context.Context, tenantID uuid.UUID, filter purchase.PurchaseOrderFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&purchase.PurchaseOrder{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SupplierName != "" {
		query = query.Where("supplier_name LIKE ?", "%"+strings.TrimSpace(filter.SupplierName)+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("order_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("order_date < ?", *filter.EndDate)
	}
	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("po_number LIKE ? OR supplier_name LIKE ?", pattern, pattern)
	}

	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ purchase.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
