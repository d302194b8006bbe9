package persistence

import (
	"context"

	apppurchase "github.com/stocktrack/backend/internal/application/purchase"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/purchase"
	"gorm.io/gorm"
)

// GormPurchaseTransactionScope implements the purchase TransactionScope using
// GORM transactions. A receipt recording spans the order, its lines, the
// receipt, the variants and the movement ledger; everything commits or rolls
// back as one unit.
type GormPurchaseTransactionScope struct {
	db *gorm.DB
}

// NewGormPurchaseTransactionScope creates a new GormPurchaseTransactionScope
func NewGormPurchaseTransactionScope(db *gorm.DB) *GormPurchaseTransactionScope {
	return &GormPurchaseTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormPurchaseTransactionScope) Execute(ctx context.Context, fn func(repos apppurchase.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&purchaseTxRepositories{tx: tx})
	})
}

// purchaseTxRepositories provides transaction-scoped repositories
type purchaseTxRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the purchase order repository scoped to the current transaction
func (r *purchaseTxRepositories) OrderRepo() purchase.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// ReceiptRepo returns the receipt repository scoped to the current transaction
func (r *purchaseTxRepositories) ReceiptRepo() purchase.ReceiptRepository {
	return NewGormReceiptRepository(r.tx)
}

// VariantRepo returns the variant repository scoped to the current transaction
func (r *purchaseTxRepositories) VariantRepo() inventory.VariantRepository {
	return NewGormVariantRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction
func (r *purchaseTxRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Ensure GormPurchaseTransactionScope implements TransactionScope
var _ apppurchase.TransactionScope = (*GormPurchaseTransactionScope)(nil)

// Ensure purchaseTxRepositories implements TransactionalRepositories
var _ apppurchase.TransactionalRepositories = (*purchaseTxRepositories)(nil)
