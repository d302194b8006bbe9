package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// ReceiptEntry records the received quantity and actual price for one order
// line within a receipt
type ReceiptEntry struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID        uuid.UUID       `gorm:"type:uuid;not null"`
	VariantSKU       string          `gorm:"type:varchar(100);not null"`
	QuantityReceived int64           `gorm:"not null"`
	ActualPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptEntry) TableName() string {
	return "receipt_entries"
}

// Receipt is an immutable record of one receiving event against a purchase
// order. Once recorded it is never edited; corrections happen through
// adjustment stock movements.
type Receipt struct {
	shared.BaseEntity
	TenantID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_receipt_tenant_number,priority:1"`
	ReceiptNumber   string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_receipt_tenant_number,priority:2"`
	PurchaseOrderID uuid.UUID      `gorm:"type:uuid;not null;index"`
	ReceiptDate     time.Time      `gorm:"not null"`
	Notes           string         `gorm:"type:varchar(1000)"`
	CreatedBy       uuid.UUID      `gorm:"type:uuid;not null"`
	Entries         []ReceiptEntry `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (Receipt) TableName() string {
	return "receipts"
}

// ReceiptEntryInput is one requested line receipt
type ReceiptEntryInput struct {
	LineID           uuid.UUID
	QuantityReceived int64
	ActualPrice      decimal.Decimal
}

// NewReceipt creates a receipt for a purchase order from the given entries.
// Entries are validated for shape only; over-receipt checks happen against
// the order lines in PurchaseOrder.ApplyReceipt.
func NewReceipt(order *PurchaseOrder, receiptNumber string, receiptDate time.Time, notes string, inputs []ReceiptEntryInput, createdBy uuid.UUID) (*Receipt, error) {
	if order == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Purchase order is required")
	}
	if receiptNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Receipt number cannot be empty")
	}
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Receipt must have at least one entry")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Creator is required")
	}
	if receiptDate.IsZero() {
		receiptDate = time.Now()
	}

	receipt := &Receipt{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        order.TenantID,
		ReceiptNumber:   receiptNumber,
		PurchaseOrderID: order.ID,
		ReceiptDate:     receiptDate,
		Notes:           notes,
		CreatedBy:       createdBy,
		Entries:         make([]ReceiptEntry, 0, len(inputs)),
	}

	for _, input := range inputs {
		if input.QuantityReceived <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Receipt entry quantity must be positive")
		}
		if input.ActualPrice.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Receipt entry price cannot be negative")
		}
		line := order.GetLine(input.LineID)
		if line == nil {
			return nil, shared.NewDomainErrorf(shared.ErrNotFound.Code, "Purchase order line %s not found", input.LineID)
		}

		receipt.Entries = append(receipt.Entries, ReceiptEntry{
			ID:               uuid.New(),
			ReceiptID:        receipt.ID,
			LineID:           line.ID,
			VariantID:        line.VariantID,
			VariantSKU:       line.VariantSKU,
			QuantityReceived: input.QuantityReceived,
			ActualPrice:      input.ActualPrice,
			CreatedAt:        time.Now(),
		})
	}

	return receipt, nil
}

// TotalQuantity returns the total received quantity across all entries
func (r *Receipt) TotalQuantity() int64 {
	var total int64
	for _, entry := range r.Entries {
		total += entry.QuantityReceived
	}
	return total
}

// TotalValue returns the sum of quantity * actualPrice over all entries
func (r *Receipt) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range r.Entries {
		total = total.Add(entry.ActualPrice.Mul(decimal.NewFromInt(entry.QuantityReceived)))
	}
	return total
}
