package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder(uuid.New(), "PO-20260831-0001", "Acme Textiles", time.Now())
	require.NoError(t, err)
	return order
}

func addTestLine(t *testing.T, order *PurchaseOrder, sku string, qty int64, price string) *PurchaseOrderLine {
	t.Helper()
	line, err := order.AddLine(uuid.New(), uuid.New(), sku, qty, decimal.RequireFromString(price))
	require.NoError(t, err)
	return line
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates order in draft status", func(t *testing.T) {
		order := createTestOrder(t)

		assert.Equal(t, PurchaseOrderStatusDraft, order.Status)
		assert.Equal(t, "PO-20260831-0001", order.PONumber)
		assert.True(t, order.TotalAmount.IsZero())
		assert.Len(t, order.GetDomainEvents(), 1)
	})

	t.Run("fails with empty PO number", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "", "Acme", time.Now())
		require.Error(t, err)
	})

	t.Run("fails with empty supplier", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-1", "", time.Now())
		require.Error(t, err)
	})
}

func TestPurchaseOrder_Lines(t *testing.T) {
	t.Run("adding lines recalculates total", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, "TEE-RED-M", 10, "4.50")
		addTestLine(t, order, "TEE-RED-L", 5, "5.00")

		assert.Equal(t, 2, order.LineCount())
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("70")))
	})

	t.Run("rejects duplicate variant", func(t *testing.T) {
		order := createTestOrder(t)
		variantID := uuid.New()
		_, err := order.AddLine(uuid.New(), variantID, "TEE-RED-M", 10, decimal.NewFromInt(4))
		require.NoError(t, err)

		_, err = order.AddLine(uuid.New(), variantID, "TEE-RED-M", 3, decimal.NewFromInt(4))
		require.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		order := createTestOrder(t)
		_, err := order.AddLine(uuid.New(), uuid.New(), "TEE-RED-M", 0, decimal.NewFromInt(4))
		require.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		order := createTestOrder(t)
		_, err := order.AddLine(uuid.New(), uuid.New(), "TEE-RED-M", 1, decimal.NewFromInt(-1))
		require.Error(t, err)
	})

	t.Run("update and remove only in draft", func(t *testing.T) {
		order := createTestOrder(t)
		line := addTestLine(t, order, "TEE-RED-M", 10, "4.50")
		require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))

		err := order.UpdateLine(line.ID, 20, decimal.NewFromInt(4))
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)

		err = order.RemoveLine(line.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)

		_, err = order.AddLine(uuid.New(), uuid.New(), "TEE-RED-L", 1, decimal.NewFromInt(4))
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("returned line aliases the stored line", func(t *testing.T) {
		order := createTestOrder(t)
		line := addTestLine(t, order, "TEE-RED-M", 10, "4.50")

		// Mutations through the returned pointer must reach the order
		line.QuantityReceived = 4
		assert.Equal(t, int64(4), order.GetLine(line.ID).QuantityReceived)
		assert.Equal(t, int64(6), order.PendingQuantityByVariant()[line.VariantID])
	})

	t.Run("update recalculates total", func(t *testing.T) {
		order := createTestOrder(t)
		line := addTestLine(t, order, "TEE-RED-M", 10, "4.50")

		require.NoError(t, order.UpdateLine(line.ID, 4, decimal.NewFromInt(10)))
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(40)))
	})
}

func TestPurchaseOrder_TransitionTo(t *testing.T) {
	t.Run("draft to sent", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, "TEE-RED-M", 10, "4.50")

		require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))
		assert.Equal(t, PurchaseOrderStatusSent, order.Status)
	})

	t.Run("sent back to draft", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, "TEE-RED-M", 10, "4.50")
		require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))

		require.NoError(t, order.TransitionTo(PurchaseOrderStatusDraft))
		assert.True(t, order.CanModify())
	})

	t.Run("sent to confirmed", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, "TEE-RED-M", 10, "4.50")
		require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))

		require.NoError(t, order.TransitionTo(PurchaseOrderStatusConfirmed))
	})

	t.Run("cannot send an empty order", func(t *testing.T) {
		order := createTestOrder(t)
		err := order.TransitionTo(PurchaseOrderStatusSent)
		require.Error(t, err)
	})

	t.Run("draft cannot jump to confirmed", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, "TEE-RED-M", 10, "4.50")

		err := order.TransitionTo(PurchaseOrderStatusConfirmed)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("received cannot be requested directly", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, "TEE-RED-M", 10, "4.50")
		require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))
		require.NoError(t, order.TransitionTo(PurchaseOrderStatusConfirmed))

		err := order.TransitionTo(PurchaseOrderStatusReceived)
		assert.ErrorIs(t, err, shared.ErrManualReceivedNotAllowed)
	})

	t.Run("status change raises event", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, "TEE-RED-M", 10, "4.50")
		order.ClearDomainEvents()

		require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderStatusChanged, events[0].EventType())
	})
}

func TestPurchaseOrder_ApplyReceipt(t *testing.T) {
	setup := func(t *testing.T) (*PurchaseOrder, *PurchaseOrderLine, *PurchaseOrderLine) {
		order := createTestOrder(t)
		lineM := addTestLine(t, order, "TEE-RED-M", 10, "4.50")
		lineL := addTestLine(t, order, "TEE-RED-L", 5, "5.00")
		require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))
		order.ClearDomainEvents()
		return order, lineM, lineL
	}

	t.Run("partial receipt keeps order open", func(t *testing.T) {
		order, lineM, _ := setup(t)
		receipt, err := NewReceipt(order, "REC-20260831-0001", time.Now(), "", []ReceiptEntryInput{
			{LineID: lineM.ID, QuantityReceived: 4, ActualPrice: decimal.RequireFromString("4.50")},
		}, uuid.New())
		require.NoError(t, err)

		require.NoError(t, order.ApplyReceipt(receipt))

		assert.Equal(t, int64(4), order.GetLine(lineM.ID).QuantityReceived)
		assert.Equal(t, PurchaseOrderStatusSent, order.Status)
	})

	t.Run("receiving every line completes the order", func(t *testing.T) {
		order, lineM, lineL := setup(t)
		receipt, err := NewReceipt(order, "REC-20260831-0001", time.Now(), "", []ReceiptEntryInput{
			{LineID: lineM.ID, QuantityReceived: 10, ActualPrice: decimal.RequireFromString("4.50")},
			{LineID: lineL.ID, QuantityReceived: 5, ActualPrice: decimal.RequireFromString("5.20")},
		}, uuid.New())
		require.NoError(t, err)

		require.NoError(t, order.ApplyReceipt(receipt))

		assert.Equal(t, PurchaseOrderStatusReceived, order.Status)
		require.NotNil(t, order.ReceivedAt)

		// one status change plus one receipt recorded
		events := order.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypePurchaseOrderStatusChanged, events[0].EventType())
		assert.Equal(t, EventTypeReceiptRecorded, events[1].EventType())
	})

	t.Run("rejects receipt against draft order", func(t *testing.T) {
		order := createTestOrder(t)
		line := addTestLine(t, order, "TEE-RED-M", 10, "4.50")

		receipt := &Receipt{Entries: []ReceiptEntry{{LineID: line.ID, QuantityReceived: 1}}}
		err := order.ApplyReceipt(receipt)
		assert.ErrorIs(t, err, shared.ErrReceiptBeforeSend)
	})

	t.Run("rejects over-receipt", func(t *testing.T) {
		order, lineM, _ := setup(t)
		receipt, err := NewReceipt(order, "REC-20260831-0001", time.Now(), "", []ReceiptEntryInput{
			{LineID: lineM.ID, QuantityReceived: 11, ActualPrice: decimal.RequireFromString("4.50")},
		}, uuid.New())
		require.NoError(t, err)

		err = order.ApplyReceipt(receipt)
		assert.ErrorIs(t, err, shared.ErrOverReceipt)
	})

	t.Run("cumulative receipts cannot exceed ordered", func(t *testing.T) {
		order, lineM, _ := setup(t)
		first, err := NewReceipt(order, "REC-20260831-0001", time.Now(), "", []ReceiptEntryInput{
			{LineID: lineM.ID, QuantityReceived: 8, ActualPrice: decimal.RequireFromString("4.50")},
		}, uuid.New())
		require.NoError(t, err)
		require.NoError(t, order.ApplyReceipt(first))

		second, err := NewReceipt(order, "REC-20260831-0002", time.Now(), "", []ReceiptEntryInput{
			{LineID: lineM.ID, QuantityReceived: 3, ActualPrice: decimal.RequireFromString("4.50")},
		}, uuid.New())
		require.NoError(t, err)

		err = order.ApplyReceipt(second)
		assert.ErrorIs(t, err, shared.ErrOverReceipt)
	})

	t.Run("rejects entry for unknown line", func(t *testing.T) {
		order, _, _ := setup(t)
		_, err := NewReceipt(order, "REC-20260831-0001", time.Now(), "", []ReceiptEntryInput{
			{LineID: uuid.New(), QuantityReceived: 1, ActualPrice: decimal.Zero},
		}, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPurchaseOrder_PriceVariance(t *testing.T) {
	order := createTestOrder(t)
	lineM := addTestLine(t, order, "TEE-RED-M", 10, "4.50")
	lineL := addTestLine(t, order, "TEE-RED-L", 5, "5.00")
	require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))

	receipt, err := NewReceipt(order, "REC-20260831-0001", time.Now(), "", []ReceiptEntryInput{
		{LineID: lineM.ID, QuantityReceived: 4, ActualPrice: decimal.RequireFromString("5.00")},
		{LineID: lineL.ID, QuantityReceived: 5, ActualPrice: decimal.RequireFromString("4.80")},
	}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.ApplyReceipt(receipt))

	receipts := []Receipt{*receipt}

	// line M: (5.00-4.50)*4 = 2.00; line L: (4.80-5.00)*5 = -1.00
	variance := order.PriceVariance(receipts)
	assert.True(t, variance.Equal(decimal.RequireFromString("1")), "got %s", variance)

	lineVariances := order.LineVariances(receipts)
	require.Len(t, lineVariances, 2)
	assert.True(t, lineVariances[0].Variance.Equal(decimal.RequireFromString("2")))
	assert.True(t, lineVariances[1].Variance.Equal(decimal.RequireFromString("-1")))
}

func TestPurchaseOrder_PendingQuantityByVariant(t *testing.T) {
	order := createTestOrder(t)
	lineM := addTestLine(t, order, "TEE-RED-M", 10, "4.50")
	addTestLine(t, order, "TEE-RED-L", 5, "5.00")
	require.NoError(t, order.TransitionTo(PurchaseOrderStatusSent))

	receipt, err := NewReceipt(order, "REC-20260831-0001", time.Now(), "", []ReceiptEntryInput{
		{LineID: lineM.ID, QuantityReceived: 4, ActualPrice: decimal.RequireFromString("4.50")},
	}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.ApplyReceipt(receipt))

	pending := order.PendingQuantityByVariant()
	assert.Equal(t, int64(6), pending[lineM.VariantID])
	assert.Len(t, pending, 2)
}
