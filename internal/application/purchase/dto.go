package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/purchase"
)

// OrderLineRequest represents one requested order line
type OrderLineRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	VariantID       uuid.UUID       `json:"variant_id" binding:"required"`
	QuantityOrdered int64           `json:"quantity_ordered" binding:"required,gt=0"`
	ExpectedPrice   decimal.Decimal `json:"expected_price"`
}

// CreateOrderRequest represents a request to create a purchase order
type CreateOrderRequest struct {
	SupplierName         string             `json:"supplier_name" binding:"required,min=1,max=200"`
	OrderDate            *time.Time         `json:"order_date"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date"`
	Notes                string             `json:"notes" binding:"max=1000"`
	Lines                []OrderLineRequest `json:"lines" binding:"omitempty,dive"`
}

// UpdateOrderRequest represents a request to update a draft purchase order.
// Lines replace the order's current lines wholesale.
type UpdateOrderRequest struct {
	SupplierName         string             `json:"supplier_name" binding:"required,min=1,max=200"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date"`
	Notes                string             `json:"notes" binding:"max=1000"`
	Lines                []OrderLineRequest `json:"lines" binding:"omitempty,dive"`
}

// TransitionRequest represents a caller-requested status transition
type TransitionRequest struct {
	Status string `json:"status" binding:"required,postatus"`
}

// ReceiptEntryRequest represents one receipt entry
type ReceiptEntryRequest struct {
	LineID           uuid.UUID       `json:"line_id" binding:"required"`
	QuantityReceived int64           `json:"quantity_received" binding:"required,gt=0"`
	ActualPrice      decimal.Decimal `json:"actual_price"`
}

// RecordReceiptRequest represents a request to record a receipt
type RecordReceiptRequest struct {
	ReceiptDate *time.Time            `json:"receipt_date"`
	Notes       string                `json:"notes" binding:"max=1000"`
	Entries     []ReceiptEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// OrderListFilter represents filter options for purchase order lists
type OrderListFilter struct {
	Status       string     `form:"status" binding:"omitempty,postatus"`
	SupplierName string     `form:"supplier_name"`
	StartDate    *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	VariantID        uuid.UUID       `json:"variant_id"`
	VariantSKU       string          `json:"variant_sku"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	ExpectedPrice    decimal.Decimal `json:"expected_price"`
}

// OrderResponse represents a purchase order in API responses
type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	PONumber             string              `json:"po_number"`
	SupplierName         string              `json:"supplier_name"`
	Status               string              `json:"status"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	Lines                []OrderLineResponse `json:"lines"`
	ReceivedAt           *time.Time          `json:"received_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	Version              int                 `json:"version"`
}

// ToOrderResponse converts a domain purchase order to a response DTO
func ToOrderResponse(order *purchase.PurchaseOrder) OrderResponse {
	lines := make([]OrderLineResponse, len(order.Lines))
	for idx, line := range order.Lines {
		lines[idx] = OrderLineResponse{
			ID:               line.ID,
			ProductID:        line.ProductID,
			VariantID:        line.VariantID,
			VariantSKU:       line.VariantSKU,
			QuantityOrdered:  line.QuantityOrdered,
			QuantityReceived: line.QuantityReceived,
			ExpectedPrice:    line.ExpectedPrice,
		}
	}
	return OrderResponse{
		ID:                   order.ID,
		PONumber:             order.PONumber,
		SupplierName:         order.SupplierName,
		Status:               order.Status.String(),
		OrderDate:            order.OrderDate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		Notes:                order.Notes,
		TotalAmount:          order.TotalAmount,
		Lines:                lines,
		ReceivedAt:           order.ReceivedAt,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Version:              order.GetVersion(),
	}
}

// ToOrderResponses converts a slice of domain orders to response DTOs
func ToOrderResponses(orders []purchase.PurchaseOrder) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for idx := range orders {
		responses[idx] = ToOrderResponse(&orders[idx])
	}
	return responses
}

// ReceiptEntryResponse represents a receipt entry in API responses
type ReceiptEntryResponse struct {
	ID               uuid.UUID       `json:"id"`
	LineID           uuid.UUID       `json:"line_id"`
	VariantID        uuid.UUID       `json:"variant_id"`
	VariantSKU       string          `json:"variant_sku"`
	QuantityReceived int64           `json:"quantity_received"`
	ActualPrice      decimal.Decimal `json:"actual_price"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID            uuid.UUID              `json:"id"`
	ReceiptNumber string                 `json:"receipt_number"`
	ReceiptDate   time.Time              `json:"receipt_date"`
	Notes         string                 `json:"notes,omitempty"`
	Entries       []ReceiptEntryResponse `json:"entries"`
	TotalQuantity int64                  `json:"total_quantity"`
	TotalValue    decimal.Decimal        `json:"total_value"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ToReceiptResponse converts a domain receipt to a response DTO
func ToReceiptResponse(receipt *purchase.Receipt) ReceiptResponse {
	entries := make([]ReceiptEntryResponse, len(receipt.Entries))
	for idx, entry := range receipt.Entries {
		entries[idx] = ReceiptEntryResponse{
			ID:               entry.ID,
			LineID:           entry.LineID,
			VariantID:        entry.VariantID,
			VariantSKU:       entry.VariantSKU,
			QuantityReceived: entry.QuantityReceived,
			ActualPrice:      entry.ActualPrice,
		}
	}
	return ReceiptResponse{
		ID:            receipt.ID,
		ReceiptNumber: receipt.ReceiptNumber,
		ReceiptDate:   receipt.ReceiptDate,
		Notes:         receipt.Notes,
		Entries:       entries,
		TotalQuantity: receipt.TotalQuantity(),
		TotalValue:    receipt.TotalValue(),
		CreatedAt:     receipt.CreatedAt,
	}
}

// ToReceiptResponses converts a slice of domain receipts to response DTOs
func ToReceiptResponses(receipts []purchase.Receipt) []ReceiptResponse {
	responses := make([]ReceiptResponse, len(receipts))
	for idx := range receipts {
		responses[idx] = ToReceiptResponse(&receipts[idx])
	}
	return responses
}

// LineVarianceResponse represents the derived price variance for one line
type LineVarianceResponse struct {
	LineID           uuid.UUID       `json:"line_id"`
	VariantSKU       string          `json:"variant_sku"`
	ExpectedPrice    decimal.Decimal `json:"expected_price"`
	QuantityReceived int64           `json:"quantity_received"`
	Variance         decimal.Decimal `json:"variance"`
}

// OrderDetailResponse is the order with its receipts and derived variance
type OrderDetailResponse struct {
	OrderResponse
	Receipts      []ReceiptResponse      `json:"receipts"`
	LineVariances []LineVarianceResponse `json:"line_variances"`
	TotalVariance decimal.Decimal        `json:"total_variance"`
}
