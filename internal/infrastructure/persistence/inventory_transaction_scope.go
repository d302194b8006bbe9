package persistence

import (
	"context"

	appinv "github.com/stocktrack/backend/internal/application/inventory"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions. The variant update and the ledger append of one
// stock mutation commit or roll back together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&inventoryTxRepositories{tx: tx})
	})
}

// inventoryTxRepositories provides transaction-scoped inventory repositories
type inventoryTxRepositories struct {
	tx *gorm.DB
}

// VariantRepo returns the variant repository scoped to the current transaction
func (r *inventoryTxRepositories) VariantRepo() inventory.VariantRepository {
	return NewGormVariantRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction
func (r *inventoryTxRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Ensure GormInventoryTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormInventoryTransactionScope)(nil)

// Ensure inventoryTxRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*inventoryTxRepositories)(nil)
