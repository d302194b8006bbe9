package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	ProductCode string          `json:"product_code" binding:"required,min=1,max=50"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=1000"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=1000"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// SetPriceOverrideRequest sets an explicit price for one variant SKU
type SetPriceOverrideRequest struct {
	SKU   string          `json:"sku" binding:"required,min=1,max=100"`
	Price decimal.Decimal `json:"price"`
}

// PriceOverrideResponse represents a price override in API responses
type PriceOverrideResponse struct {
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID               `json:"id"`
	ProductCode    string                  `json:"product_code"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description,omitempty"`
	BasePrice      decimal.Decimal         `json:"base_price"`
	PriceOverrides []PriceOverrideResponse `json:"price_overrides"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
	Version        int                     `json:"version"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(product *catalog.Product) ProductResponse {
	overrides := make([]PriceOverrideResponse, len(product.PriceOverrides))
	for idx, override := range product.PriceOverrides {
		overrides[idx] = PriceOverrideResponse{SKU: override.SKU, Price: override.Price}
	}
	return ProductResponse{
		ID:             product.ID,
		ProductCode:    product.ProductCode,
		Name:           product.Name,
		Description:    product.Description,
		BasePrice:      product.BasePrice,
		PriceOverrides: overrides,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
		Version:        product.GetVersion(),
	}
}

// ToProductResponses converts a slice of domain products to response DTOs
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for idx := range products {
		responses[idx] = ToProductResponse(&products[idx])
	}
	return responses
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
