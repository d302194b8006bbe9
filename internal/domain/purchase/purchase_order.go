package purchase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "sent"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "confirmed"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
)

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusConfirmed, PurchaseOrderStatusReceived:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// The received status is reachable only through receipt recording, never by a
// direct caller request; see PurchaseOrder.TransitionTo.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusDraft
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusDraft
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusReceived
	case PurchaseOrderStatusReceived:
		return false // Terminal state
	}
	return false
}

// CanReceive returns true if receipts may be recorded in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusSent || s == PurchaseOrderStatusConfirmed
}

// PurchaseOrderLine represents a line item in a purchase order
type PurchaseOrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID        uuid.UUID       `gorm:"type:uuid;not null"`
	VariantSKU       string          `gorm:"type:varchar(100);not null"`
	QuantityOrdered  int64           `gorm:"not null"`
	QuantityReceived int64           `gorm:"not null;default:0"`
	ExpectedPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// NewPurchaseOrderLine creates a new purchase order line
func NewPurchaseOrderLine(tenantID, orderID, productID, variantID uuid.UUID, variantSKU string, quantityOrdered int64, expectedPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if productID == uuid.Nil || variantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product and variant IDs are required")
	}
	if variantSKU == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Variant SKU cannot be empty")
	}
	if quantityOrdered <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Ordered quantity must be positive")
	}
	if expectedPrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Expected price cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderLine{
		ID:              uuid.New(),
		TenantID:        tenantID,
		PurchaseOrderID: orderID,
		ProductID:       productID,
		VariantID:       variantID,
		VariantSKU:      strings.ToUpper(strings.TrimSpace(variantSKU)),
		QuantityOrdered: quantityOrdered,
		ExpectedPrice:   expectedPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// RemainingQuantity returns the quantity still to be received
func (l *PurchaseOrderLine) RemainingQuantity() int64 {
	remaining := l.QuantityOrdered - l.QuantityReceived
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.QuantityReceived >= l.QuantityOrdered
}

// AddReceivedQuantity adds to the cumulative received quantity.
// Receiving beyond the ordered quantity fails with ErrOverReceipt.
func (l *PurchaseOrderLine) AddReceivedQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Receive quantity must be positive")
	}
	if l.QuantityReceived+quantity > l.QuantityOrdered {
		return shared.NewDomainErrorf(shared.ErrOverReceipt.Code,
			"Cannot receive %d for line %s, only %d remaining", quantity, l.VariantSKU, l.RemainingQuantity())
	}

	l.QuantityReceived += quantity
	l.UpdatedAt = time.Now()

	return nil
}

// Amount returns quantityOrdered * expectedPrice
func (l *PurchaseOrderLine) Amount() decimal.Decimal {
	return l.ExpectedPrice.Mul(decimal.NewFromInt(l.QuantityOrdered))
}

// PurchaseOrder represents a purchase order aggregate root.
// It tracks a supplier order from draft through receipt of goods.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	PONumber             string              `gorm:"type:varchar(50);not null;index"`
	SupplierName         string              `gorm:"type:varchar(200);not null;index"`
	Status               PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	OrderDate            time.Time           `gorm:"not null;index"`
	ExpectedDeliveryDate *time.Time
	Notes                string              `gorm:"type:varchar(1000)"`
	TotalAmount          decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Lines                []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID;references:ID"`
	ReceivedAt           *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in draft status
func NewPurchaseOrder(tenantID uuid.UUID, poNumber, supplierName string, orderDate time.Time) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "PO number cannot be empty")
	}
	if len(poNumber) > 50 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "PO number cannot exceed 50 characters")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Supplier name cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PONumber:            poNumber,
		SupplierName:        supplierName,
		Status:              PurchaseOrderStatusDraft,
		OrderDate:           orderDate,
		TotalAmount:         decimal.Zero,
		Lines:               make([]PurchaseOrderLine, 0),
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// AddLine adds a new line to the order. Only allowed in draft status.
func (o *PurchaseOrder) AddLine(productID, variantID uuid.UUID, variantSKU string, quantityOrdered int64, expectedPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if !o.CanModify() {
		return nil, shared.NewDomainErrorf(shared.ErrInvalidTransition.Code, "Cannot add lines to a %s order", o.Status)
	}

	for _, line := range o.Lines {
		if line.VariantID == variantID {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Variant already has a line on this order")
		}
	}

	line, err := NewPurchaseOrderLine(o.TenantID, o.ID, productID, variantID, variantSKU, quantityOrdered, expectedPrice)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotal()
	o.Touch()

	// Return the stored line, not the local copy, so callers mutate the order.
	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLine updates the ordered quantity and expected price of an existing
// line. Only allowed in draft status.
func (o *PurchaseOrder) UpdateLine(lineID uuid.UUID, quantityOrdered int64, expectedPrice decimal.Decimal) error {
	if !o.CanModify() {
		return shared.NewDomainErrorf(shared.ErrInvalidTransition.Code, "Cannot update lines of a %s order", o.Status)
	}
	if quantityOrdered <= 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Ordered quantity must be positive")
	}
	if expectedPrice.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Expected price cannot be negative")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			o.Lines[idx].QuantityOrdered = quantityOrdered
			o.Lines[idx].ExpectedPrice = expectedPrice
			o.Lines[idx].UpdatedAt = time.Now()
			o.recalculateTotal()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError(shared.ErrNotFound.Code, "Purchase order line not found")
}

// RemoveLine removes a line from the order. Only allowed in draft status.
func (o *PurchaseOrder) RemoveLine(lineID uuid.UUID) error {
	if !o.CanModify() {
		return shared.NewDomainErrorf(shared.ErrInvalidTransition.Code, "Cannot remove lines from a %s order", o.Status)
	}

	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.recalculateTotal()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError(shared.ErrNotFound.Code, "Purchase order line not found")
}

// UpdateDetails updates supplier, notes and expected delivery date.
// Only allowed in draft status.
func (o *PurchaseOrder) UpdateDetails(supplierName, notes string, expectedDelivery *time.Time) error {
	if !o.CanModify() {
		return shared.NewDomainErrorf(shared.ErrInvalidTransition.Code, "Cannot edit a %s order", o.Status)
	}
	if supplierName == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Supplier name cannot be empty")
	}

	o.SupplierName = supplierName
	o.Notes = notes
	o.ExpectedDeliveryDate = expectedDelivery
	o.Touch()

	return nil
}

// TransitionTo moves the order to the target status on behalf of a caller.
// The received status can never be requested directly; it is reached only by
// recording receipts that complete every line.
func (o *PurchaseOrder) TransitionTo(target PurchaseOrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid status: %s", target)
	}
	if target == PurchaseOrderStatusReceived {
		return shared.NewDomainError(shared.ErrManualReceivedNotAllowed.Code,
			"The received status is set automatically when all lines are fully received")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainErrorf(shared.ErrInvalidTransition.Code,
			"Cannot transition purchase order from %s to %s", o.Status, target)
	}
	if target == PurchaseOrderStatusSent && len(o.Lines) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot send a purchase order without lines")
	}

	from := o.Status
	o.Status = target
	o.Touch()

	if from != target {
		o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, from, target))
	}

	return nil
}

// ApplyReceipt applies a validated receipt to the order lines, incrementing
// each line's cumulative received quantity. When every line is fully received
// the order auto-transitions to received. Recording against a draft order
// fails with ErrReceiptBeforeSend.
func (o *PurchaseOrder) ApplyReceipt(receipt *Receipt) error {
	if o.Status == PurchaseOrderStatusDraft {
		return shared.NewDomainError(shared.ErrReceiptBeforeSend.Code,
			"Cannot record a receipt against a draft purchase order")
	}
	if !o.Status.CanReceive() {
		return shared.NewDomainErrorf(shared.ErrInvalidTransition.Code,
			"Cannot record a receipt against a %s purchase order", o.Status)
	}
	if receipt == nil || len(receipt.Entries) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Receipt must have at least one entry")
	}

	for _, entry := range receipt.Entries {
		line := o.GetLine(entry.LineID)
		if line == nil {
			return shared.NewDomainErrorf(shared.ErrNotFound.Code, "Purchase order line %s not found", entry.LineID)
		}
		if err := line.AddReceivedQuantity(entry.QuantityReceived); err != nil {
			return err
		}
	}

	if o.isFullyReceived() {
		from := o.Status
		now := time.Now()
		o.Status = PurchaseOrderStatusReceived
		o.ReceivedAt = &now
		o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, from, PurchaseOrderStatusReceived))
	}

	o.Touch()
	o.AddDomainEvent(NewReceiptRecordedEvent(o, receipt))

	return nil
}

// Touch bumps the aggregate timestamp and optimistic lock version
func (o *PurchaseOrder) Touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// recalculateTotal recalculates the order total from its lines
func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Amount())
	}
	o.TotalAmount = total
}

// isFullyReceived checks if every line has been fully received
func (o *PurchaseOrder) isFullyReceived() bool {
	for _, line := range o.Lines {
		if !line.IsFullyReceived() {
			return false
		}
	}
	return len(o.Lines) > 0
}

// GetLine returns a line by its ID
func (o *PurchaseOrder) GetLine(lineID uuid.UUID) *PurchaseOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// GetLineByVariant returns a line by variant ID
func (o *PurchaseOrder) GetLineByVariant(variantID uuid.UUID) *PurchaseOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].VariantID == variantID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// PendingQuantityByVariant returns remaining quantities keyed by variant
func (o *PurchaseOrder) PendingQuantityByVariant() map[uuid.UUID]int64 {
	pending := make(map[uuid.UUID]int64, len(o.Lines))
	for _, line := range o.Lines {
		if remaining := line.RemainingQuantity(); remaining > 0 {
			pending[line.VariantID] += remaining
		}
	}
	return pending
}

// IsDraft returns true if the order is in draft status
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// IsReceived returns true if the order has been fully received
func (o *PurchaseOrder) IsReceived() bool {
	return o.Status == PurchaseOrderStatusReceived
}

// CanModify returns true if lines and details can still be edited
func (o *PurchaseOrder) CanModify() bool {
	return o.IsDraft()
}

// LineCount returns the number of lines on the order
func (o *PurchaseOrder) LineCount() int {
	return len(o.Lines)
}

// PriceVariance returns the total price variance across all lines, derived
// from the given receipts: sum of (actualPrice - expectedPrice) * quantity
// over every receipt entry.
func (o *PurchaseOrder) PriceVariance(receipts []Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, lv := range o.LineVariances(receipts) {
		total = total.Add(lv.Variance)
	}
	return total
}

// LineVariance is the derived price variance for one order line
type LineVariance struct {
	LineID           uuid.UUID       `json:"line_id"`
	VariantSKU       string          `json:"variant_sku"`
	ExpectedPrice    decimal.Decimal `json:"expected_price"`
	QuantityReceived int64           `json:"quantity_received"`
	Variance         decimal.Decimal `json:"variance"`
}

// LineVariances derives the per-line price variance from the given receipts.
// Variance is never stored; it is recomputed from the receipt entries.
func (o *PurchaseOrder) LineVariances(receipts []Receipt) []LineVariance {
	variances := make([]LineVariance, 0, len(o.Lines))
	for _, line := range o.Lines {
		lv := LineVariance{
			LineID:           line.ID,
			VariantSKU:       line.VariantSKU,
			ExpectedPrice:    line.ExpectedPrice,
			QuantityReceived: line.QuantityReceived,
			Variance:         decimal.Zero,
		}
		for _, receipt := range receipts {
			for _, entry := range receipt.Entries {
				if entry.LineID != line.ID {
					continue
				}
				diff := entry.ActualPrice.Sub(line.ExpectedPrice)
				lv.Variance = lv.Variance.Add(diff.Mul(decimal.NewFromInt(entry.QuantityReceived)))
			}
		}
		variances = append(variances, lv)
	}
	return variances
}

// Describe returns a short human readable summary, used in logs
func (o *PurchaseOrder) Describe() string {
	return fmt.Sprintf("%s (%s, %d lines)", o.PONumber, o.Status, len(o.Lines))
}
