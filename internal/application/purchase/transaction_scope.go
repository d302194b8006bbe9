package purchase

import (
	"context"

	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/purchase"
)

// TransactionScope provides transactional access to the repositories a
// receipt recording touches. Recording a receipt mutates the order, its
// lines, the receipt table, the variants and the movement ledger; all of it
// commits or rolls back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to purchase and inventory
// repositories within a transaction. All repositories returned share the
// same underlying database transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the purchase order repository scoped to the current transaction
	OrderRepo() purchase.PurchaseOrderRepository
	// ReceiptRepo returns the receipt repository scoped to the current transaction
	ReceiptRepo() purchase.ReceiptRepository
	// VariantRepo returns the variant repository scoped to the current transaction
	VariantRepo() inventory.VariantRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions, for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	orderRepo    purchase.PurchaseOrderRepository
	receiptRepo  purchase.ReceiptRepository
	variantRepo  inventory.VariantRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo purchase.PurchaseOrderRepository,
	receiptRepo purchase.ReceiptRepository,
	variantRepo inventory.VariantRepository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:    orderRepo,
		receiptRepo:  receiptRepo,
		variantRepo:  variantRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) OrderRepo() purchase.PurchaseOrderRepository {
	return s.orderRepo
}

// ReceiptRepo returns the receipt repository.
func (s *NoOpTransactionScope) ReceiptRepo() purchase.ReceiptRepository {
	return s.receiptRepo
}

// VariantRepo returns the variant repository.
func (s *NoOpTransactionScope) VariantRepo() inventory.VariantRepository {
	return s.variantRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
