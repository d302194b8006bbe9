package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/purchase"
	"github.com/stocktrack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM.
// Receipts are immutable once written; the only delete path exists to clean
// up when a draft order is removed.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Create inserts a new receipt with its entries
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *purchase.Receipt) error {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicateKey
		}
		return err
	}
	return nil
}

// FindByIDForTenant finds a receipt with its entries by ID within a tenant
func (r *GormReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Receipt, error) {
	var receipt purchase.Receipt
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByPurchaseOrder finds all receipts for an order, oldest first
func (r *GormReceiptRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]purchase.Receipt, error) {
	var receipts []purchase.Receipt
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
		Order("receipt_date ASC, created_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// CountByNumberPrefix counts receipts whose number starts with the prefix
func (r *GormReceiptRepository) CountByNumberPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&purchase.Receipt{}).
		Where("tenant_id = ? AND receipt_number LIKE ?", tenantID, prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByPurchaseOrder deletes all receipts of an order with their entries
func (r *GormReceiptRepository) DeleteByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&purchase.Receipt{}).
			Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("receipt_id IN ?", ids).Delete(&purchase.ReceiptEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&purchase.Receipt{}).Error
	})
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ purchase.ReceiptRepository = (*GormReceiptRepository)(nil)
