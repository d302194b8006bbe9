package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/inventory"
)

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	Size           string    `json:"size"`
	Color          string    `json:"color"`
	Stock          int64     `json:"stock"`
	ReservedStock  int64     `json:"reserved_stock"`
	AvailableStock int64     `json:"available_stock"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// ToVariantResponse converts a domain variant to a response DTO
func ToVariantResponse(variant *inventory.Variant) VariantResponse {
	return VariantResponse{
		ID:             variant.ID,
		ProductID:      variant.ProductID,
		SKU:            variant.SKU,
		Size:           variant.Size,
		Color:          variant.Color,
		Stock:          variant.Stock,
		ReservedStock:  variant.ReservedStock,
		AvailableStock: variant.AvailableStock(),
		CreatedAt:      variant.CreatedAt,
		UpdatedAt:      variant.UpdatedAt,
		Version:        variant.GetVersion(),
	}
}

// ToVariantResponses converts a slice of domain variants to response DTOs
func ToVariantResponses(variants []inventory.Variant) []VariantResponse {
	responses := make([]VariantResponse, len(variants))
	for idx := range variants {
		responses[idx] = ToVariantResponse(&variants[idx])
	}
	return responses
}

// CreateVariantRequest represents a request to create a variant under a product
type CreateVariantRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	SKU          string    `json:"sku" binding:"required,min=1,max=100"`
	Size         string    `json:"size" binding:"required,min=1,max=50"`
	Color        string    `json:"color" binding:"required,min=1,max=50"`
	InitialStock int64     `json:"initial_stock" binding:"min=0"`
}

// MutateStockRequest represents a request to apply one stock mutation
type MutateStockRequest struct {
	VariantID     uuid.UUID  `json:"variant_id" binding:"required"`
	MovementType  string     `json:"movement_type" binding:"required,movementtype"`
	Quantity      int64      `json:"quantity" binding:"required"`
	ReferenceID   *uuid.UUID `json:"reference_id"`
	ReferenceType string     `json:"reference_type" binding:"omitempty,oneof=Order PurchaseOrder"`
	Notes         string     `json:"notes" binding:"max=500"`
}

// ReserveStockRequest represents a request to reserve available stock
type ReserveStockRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// ReleaseStockRequest represents a request to release reserved stock
type ReleaseStockRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// FulfillStockRequest represents a request to fulfill reserved stock
type FulfillStockRequest struct {
	VariantID   uuid.UUID  `json:"variant_id" binding:"required"`
	Quantity    int64      `json:"quantity" binding:"required,gt=0"`
	ReferenceID *uuid.UUID `json:"reference_id"`
	Notes       string     `json:"notes" binding:"max=500"`
}

// StockMutationResponse describes the applied mutation and resulting state
type StockMutationResponse struct {
	VariantID      uuid.UUID  `json:"variant_id"`
	SKU            string     `json:"sku"`
	MovementID     *uuid.UUID `json:"movement_id,omitempty"`
	MovementType   string     `json:"movement_type,omitempty"`
	Quantity       int64      `json:"quantity"`
	PreviousStock  int64      `json:"previous_stock"`
	NewStock       int64      `json:"new_stock"`
	ReservedStock  int64      `json:"reserved_stock"`
	AvailableStock int64      `json:"available_stock"`
}

// MovementResponse represents a ledger entry in API responses
type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	VariantID     uuid.UUID  `json:"variant_id"`
	VariantSKU    string     `json:"variant_sku"`
	MovementType  string     `json:"movement_type"`
	Quantity      int64      `json:"quantity"`
	PreviousStock int64      `json:"previous_stock"`
	NewStock      int64      `json:"new_stock"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	ReferenceType string     `json:"reference_type,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain movement to a response DTO
func ToMovementResponse(movement *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            movement.ID,
		ProductID:     movement.ProductID,
		VariantID:     movement.VariantID,
		VariantSKU:    movement.VariantSKU,
		MovementType:  movement.MovementType.String(),
		Quantity:      movement.Quantity,
		PreviousStock: movement.PreviousStock,
		NewStock:      movement.NewStock,
		ReferenceID:   movement.ReferenceID,
		ReferenceType: string(movement.ReferenceType),
		Notes:         movement.Notes,
		CreatedBy:     movement.CreatedBy,
		CreatedAt:     movement.CreatedAt,
	}
}

// ToMovementResponses converts a slice of domain movements to response DTOs
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for idx := range movements {
		responses[idx] = ToMovementResponse(&movements[idx])
	}
	return responses
}

// MovementListFilter represents filter options for the movement ledger
type MovementListFilter struct {
	ProductID    *uuid.UUID `form:"product_id"`
	VariantID    *uuid.UUID `form:"variant_id"`
	VariantSKU   string     `form:"variant_sku"`
	MovementType string     `form:"movement_type" binding:"omitempty,movementtype"`
	StartDate    *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// VariantListFilter represents filter options for variant lists
type VariantListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Search    string     `form:"search"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
