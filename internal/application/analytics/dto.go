package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryValueResponse is the total retail value of on-hand stock
type InventoryValueResponse struct {
	TotalValue   decimal.Decimal `json:"total_value"`
	VariantCount int             `json:"variant_count"`
	TotalUnits   int64           `json:"total_units"`
}

// LowStockItem describes one variant at or near stock-out, taking incoming
// purchase order quantities into account
type LowStockItem struct {
	VariantID       uuid.UUID `json:"variant_id"`
	ProductID       uuid.UUID `json:"product_id"`
	SKU             string    `json:"sku"`
	Stock           int64     `json:"stock"`
	PendingQuantity int64     `json:"pending_quantity"`
	TotalAvailable  int64     `json:"total_available"`
	IsLowStock      bool      `json:"is_low_stock"`
}

// TopSellerItem describes one product's sold quantity over the window
type TopSellerItem struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	TotalQuantitySold int64     `json:"total_quantity_sold"`
}

// MovementSeriesPoint is one day of the movement series. Days without
// movements carry explicit zeroes.
type MovementSeriesPoint struct {
	Date       string `json:"date"`
	Purchase   int64  `json:"purchase"`
	Sale       int64  `json:"sale"`
	Return     int64  `json:"return"`
	Adjustment int64  `json:"adjustment"`
}

// DashboardResponse aggregates the analytics views for one tenant
type DashboardResponse struct {
	InventoryValue InventoryValueResponse `json:"inventory_value"`
	LowStock       []LowStockItem         `json:"low_stock"`
	TopSellers     []TopSellerItem        `json:"top_sellers"`
	MovementSeries []MovementSeriesPoint  `json:"movement_series"`
}
