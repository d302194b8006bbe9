package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/purchase"
	"github.com/stocktrack/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOrder(t *testing.T, tenantID uuid.UUID, poNumber string) *purchase.PurchaseOrder {
	t.Helper()
	order, err := purchase.NewPurchaseOrder(tenantID, poNumber, "Acme Textiles", time.Now())
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func mustOrderWithLine(t *testing.T, tenantID uuid.UUID, poNumber string, quantity int64) (*purchase.PurchaseOrder, *purchase.PurchaseOrderLine) {
	t.Helper()
	order := mustOrder(t, tenantID, poNumber)
	line, err := order.AddLine(uuid.New(), uuid.New(), "PO-SKU", quantity, decimal.NewFromFloat(4.50))
	require.NoError(t, err)
	return order, line
}

func TestGormPurchaseOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID := uuid.New()

	order, line := mustOrderWithLine(t, tenantID, "PO-20250610-0001", 12)
	require.NoError(t, repo.Create(ctx, order))

	t.Run("find by ID preloads lines", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, line.ID, found.Lines[0].ID)
		assert.Equal(t, int64(12), found.Lines[0].QuantityOrdered)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromFloat(54.0)))
	})

	t.Run("find by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, tenantID, "PO-20250610-0001")
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("duplicate PO number within tenant fails", func(t *testing.T) {
		dup := mustOrder(t, tenantID, "PO-20250610-0001")
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrDuplicateKey)
	})

	t.Run("same number in another tenant is allowed", func(t *testing.T) {
		other := mustOrder(t, uuid.New(), "PO-20250610-0001")
		require.NoError(t, repo.Create(ctx, other))
	})

	t.Run("wrong tenant cannot read the order", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPurchaseOrderRepository_CountByNumberPrefix(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID := uuid.New()

	for _, number := range []string{"PO-20250610-0001", "PO-20250610-0002", "PO-20250611-0001"} {
		require.NoError(t, repo.Create(ctx, mustOrder(t, tenantID, number)))
	}

	count, err := repo.CountByNumberPrefix(ctx, tenantID, "PO-20250610-")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountByNumberPrefix(ctx, tenantID, "PO-20250612-")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestGormPurchaseOrderRepository_Save(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID := uuid.New()

	order, _ := mustOrderWithLine(t, tenantID, "PO-SAVE-0001", 10)
	require.NoError(t, repo.Create(ctx, order))

	t.Run("save persists line and status changes", func(t *testing.T) {
		require.NoError(t, order.TransitionTo(purchase.PurchaseOrderStatusSent))
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, purchase.PurchaseOrderStatusSent, found.Status)
		assert.Equal(t, order.Version, found.Version)
	})

	t.Run("stale version fails with concurrency conflict", func(t *testing.T) {
		stale, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
		require.NoError(t, err)

		// First writer wins
		fresh, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
		require.NoError(t, err)
		fresh.Touch()
		require.NoError(t, repo.Save(ctx, fresh))

		stale.Touch()
		err = repo.Save(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormPurchaseOrderRepository_SaveDraftEdits(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID := uuid.New()

	order := mustOrder(t, tenantID, "PO-EDIT-0001")
	_, err := order.AddLine(uuid.New(), uuid.New(), "EDIT-A", 4, decimal.NewFromInt(2))
	require.NoError(t, err)
	removable, err := order.AddLine(uuid.New(), uuid.New(), "EDIT-B", 6, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, order))

	// Several mutations between load and save, each bumping the version
	loaded, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.UpdateDetails("Looms & Co", "rush order", nil))
	require.NoError(t, loaded.RemoveLine(removable.ID))
	_, err = loaded.AddLine(uuid.New(), uuid.New(), "EDIT-C", 9, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	found, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Looms & Co", found.SupplierName)
	assert.Equal(t, loaded.Version, found.Version)
	require.Len(t, found.Lines, 2)
	assert.ElementsMatch(t, []string{"EDIT-A", "EDIT-C"},
		[]string{found.Lines[0].VariantSKU, found.Lines[1].VariantSKU})

	// Saving again from the same in-memory aggregate still goes through
	require.NoError(t, loaded.UpdateDetails("Looms & Co", "call ahead", nil))
	require.NoError(t, repo.Save(ctx, loaded))
}

func TestGormPurchaseOrderRepository_SaveAfterReceipt(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	receipts := NewGormReceiptRepository(db)
	tenantID := uuid.New()

	order, line := mustOrderWithLine(t, tenantID, "PO-RCV-0001", 10)
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, order.TransitionTo(purchase.PurchaseOrderStatusSent))
	require.NoError(t, repo.Save(ctx, order))

	var before int64
	require.NoError(t, db.Raw("SELECT rowid FROM purchase_order_lines WHERE id = ?", line.ID).Scan(&before).Error)

	receipt, err := purchase.NewReceipt(order, "RCV-0001", time.Now(), "", []purchase.ReceiptEntryInput{
		{LineID: line.ID, QuantityReceived: 4, ActualPrice: decimal.NewFromFloat(4.25)},
	}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.ApplyReceipt(receipt))
	require.NoError(t, receipts.Create(ctx, receipt))
	require.NoError(t, repo.Save(ctx, order))

	// Receipt entries reference line rows by foreign key, so the save must
	// update the line row in place rather than replace it.
	var after int64
	require.NoError(t, db.Raw("SELECT rowid FROM purchase_order_lines WHERE id = ?", line.ID).Scan(&after).Error)
	assert.Equal(t, before, after)

	found, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, int64(4), found.Lines[0].QuantityReceived)
}

func TestGormPurchaseOrderRepository_PendingQuantities(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID := uuid.New()
	variantA := uuid.New()
	variantB := uuid.New()

	// Open order: 10 ordered, 4 received on variant A; 5 ordered on variant B
	open := mustOrder(t, tenantID, "PO-PEND-0001")
	lineA, err := open.AddLine(uuid.New(), variantA, "PEND-A", 10, decimal.NewFromInt(1))
	require.NoError(t, err)
	_, err = open.AddLine(uuid.New(), variantB, "PEND-B", 5, decimal.NewFromInt(1))
	require.NoError(t, err)
	lineA.QuantityReceived = 4
	require.NoError(t, repo.Create(ctx, open))

	// Received order: must not contribute
	done := mustOrder(t, tenantID, "PO-PEND-0002")
	_, err = done.AddLine(uuid.New(), variantA, "PEND-A", 99, decimal.NewFromInt(1))
	require.NoError(t, err)
	done.Status = purchase.PurchaseOrderStatusReceived
	require.NoError(t, repo.Create(ctx, done))

	pending, err := repo.PendingQuantities(ctx, tenantID)
	require.NoError(t, err)

	byVariant := make(map[uuid.UUID]int64, len(pending))
	for _, p := range pending {
		byVariant[p.VariantID] = p.PendingQuantity
	}
	assert.Equal(t, int64(6), byVariant[variantA])
	assert.Equal(t, int64(5), byVariant[variantB])
}

func TestGormPurchaseOrderRepository_FindForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID := uuid.New()

	draft := mustOrder(t, tenantID, "PO-LIST-0001")
	require.NoError(t, repo.Create(ctx, draft))

	sent, _ := mustOrderWithLine(t, tenantID, "PO-LIST-0002", 3)
	require.NoError(t, sent.TransitionTo(purchase.PurchaseOrderStatusSent))
	require.NoError(t, repo.Create(ctx, sent))

	t.Run("filter by status", func(t *testing.T) {
		status := purchase.PurchaseOrderStatusSent
		orders, err := repo.FindForTenant(ctx, tenantID, purchase.PurchaseOrderFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "PO-LIST-0002", orders[0].PONumber)
	})

	t.Run("search by PO number", func(t *testing.T) {
		filter := purchase.PurchaseOrderFilter{}
		filter.Search = "LIST-0001"
		orders, err := repo.FindForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "PO-LIST-0001", orders[0].PONumber)
	})

	t.Run("count matches filter", func(t *testing.T) {
		count, err := repo.CountForTenant(ctx, tenantID, purchase.PurchaseOrderFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormPurchaseOrderRepository_DeleteForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	tenantID := uuid.New()

	order, _ := mustOrderWithLine(t, tenantID, "PO-DEL-0001", 2)
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.DeleteForTenant(ctx, tenantID, order.ID))

	_, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var lineCount int64
	require.NoError(t, db.Model(&purchase.PurchaseOrderLine{}).Where("purchase_order_id = ?", order.ID).Count(&lineCount).Error)
	assert.Zero(t, lineCount)

	t.Run("deleting a missing order fails", func(t *testing.T) {
		err := repo.DeleteForTenant(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
