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

func mustReceipt(t *testing.T, order *purchase.PurchaseOrder, number string, quantity int64) *purchase.Receipt {
	t.Helper()
	receipt, err := purchase.NewReceipt(order, number, time.Now(), "", []purchase.ReceiptEntryInput{
		{LineID: order.Lines[0].ID, QuantityReceived: quantity, ActualPrice: decimal.NewFromFloat(4.80)},
	}, uuid.New())
	require.NoError(t, err)
	return receipt
}

func TestGormReceiptRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormReceiptRepository(db)
	orderRepo := NewGormPurchaseOrderRepository(db)

	tenantID := uuid.New()
	order, _ := mustOrderWithLine(t, tenantID, "PO-REC-0001", 10)
	require.NoError(t, orderRepo.Create(ctx, order))

	first := mustReceipt(t, order, "REC-20250610-0001", 4)
	first.ReceiptDate = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, first))

	second := mustReceipt(t, order, "REC-20250610-0002", 6)
	require.NoError(t, repo.Create(ctx, second))

	t.Run("find by ID preloads entries", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, first.ID)
		require.NoError(t, err)
		require.Len(t, found.Entries, 1)
		assert.Equal(t, int64(4), found.Entries[0].QuantityReceived)
	})

	t.Run("find by purchase order oldest first", func(t *testing.T) {
		receipts, err := repo.FindByPurchaseOrder(ctx, tenantID, order.ID)
		require.NoError(t, err)
		require.Len(t, receipts, 2)
		assert.Equal(t, "REC-20250610-0001", receipts[0].ReceiptNumber)
		assert.Equal(t, "REC-20250610-0002", receipts[1].ReceiptNumber)
	})

	t.Run("duplicate receipt number within tenant fails", func(t *testing.T) {
		dup := mustReceipt(t, order, "REC-20250610-0001", 1)
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrDuplicateKey)
	})

	t.Run("count by number prefix", func(t *testing.T) {
		count, err := repo.CountByNumberPrefix(ctx, tenantID, "REC-20250610-")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("wrong tenant sees nothing", func(t *testing.T) {
		receipts, err := repo.FindByPurchaseOrder(ctx, uuid.New(), order.ID)
		require.NoError(t, err)
		assert.Empty(t, receipts)
	})

	t.Run("delete by purchase order removes receipts and entries", func(t *testing.T) {
		require.NoError(t, repo.DeleteByPurchaseOrder(ctx, tenantID, order.ID))

		receipts, err := repo.FindByPurchaseOrder(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Empty(t, receipts)

		var entryCount int64
		require.NoError(t, db.Model(&purchase.ReceiptEntry{}).Count(&entryCount).Error)
		assert.Zero(t, entryCount)
	})
}
