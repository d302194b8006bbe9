package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// PriceOverride assigns a specific price to one variant SKU of a product,
// taking precedence over the product's base price
type PriceOverride struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_price_override_product_sku,priority:1"`
	SKU       string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_price_override_product_sku,priority:2"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PriceOverride) TableName() string {
	return "product_price_overrides"
}

// Product represents a sellable product aggregate root. Stock is never
// tracked here; quantities live on the product's variants.
type Product struct {
	shared.TenantAggregateRoot
	ProductCode    string          `gorm:"type:varchar(50);not null;index"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:varchar(1000)"`
	BasePrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceOverrides []PriceOverride `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, productCode, name, description string, basePrice decimal.Decimal) (*Product, error) {
	productCode = strings.ToUpper(strings.TrimSpace(productCode))
	if productCode == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product code cannot be empty")
	}
	if len(productCode) > 50 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Base price cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductCode:         productCode,
		Name:                name,
		Description:         description,
		BasePrice:           basePrice,
		PriceOverrides:      make([]PriceOverride, 0),
	}, nil
}

// Update changes the product's display fields and base price
func (p *Product) Update(name, description string, basePrice decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if basePrice.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Base price cannot be negative")
	}

	p.Name = name
	p.Description = description
	p.BasePrice = basePrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPriceOverride sets or replaces the price for one variant SKU
func (p *Product) SetPriceOverride(sku string, price decimal.Decimal) error {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "SKU cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Override price cannot be negative")
	}

	now := time.Now()
	for idx := range p.PriceOverrides {
		if p.PriceOverrides[idx].SKU == sku {
			p.PriceOverrides[idx].Price = price
			p.PriceOverrides[idx].UpdatedAt = now
			p.UpdatedAt = now
			p.IncrementVersion()
			return nil
		}
	}

	p.PriceOverrides = append(p.PriceOverrides, PriceOverride{
		ID:        uuid.New(),
		ProductID: p.ID,
		SKU:       sku,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	})
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// RemovePriceOverride removes the price override for a SKU, if present
func (p *Product) RemovePriceOverride(sku string) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	for idx := range p.PriceOverrides {
		if p.PriceOverrides[idx].SKU == sku {
			p.PriceOverrides = append(p.PriceOverrides[:idx], p.PriceOverrides[idx+1:]...)
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			return
		}
	}
}

// EffectivePrice returns the price for the given variant SKU: the explicit
// override when one exists, otherwise the base price.
func (p *Product) EffectivePrice(sku string) decimal.Decimal {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	for _, override := range p.PriceOverrides {
		if override.SKU == sku {
			return override.Price
		}
	}
	return p.BasePrice
}

// HasOverride returns true if the SKU has an explicit price override
func (p *Product) HasOverride(sku string) bool {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	for _, override := range p.PriceOverrides {
		if override.SKU == sku {
			return true
		}
	}
	return false
}
