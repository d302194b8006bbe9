package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/catalog"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/purchase"
	"github.com/stocktrack/backend/internal/domain/shared"
)

const (
	// TopSellerLimit caps the top sellers list
	TopSellerLimit = 5
	// DefaultSeriesDays is the default movement series window
	DefaultSeriesDays = 30
	// DefaultLowStockThreshold is used when the caller passes none
	DefaultLowStockThreshold = 10
	// DefaultTopSellerWindow is the default trailing sales window
	DefaultTopSellerWindow = 30 * 24 * time.Hour
)

// AnalyticsService derives read-only views over the variant store, the
// movement ledger and the purchase order workflow. It never mutates state.
type AnalyticsService struct {
	variantRepo  inventory.VariantRepository
	movementRepo inventory.StockMovementRepository
	productRepo  catalog.ProductRepository
	orderRepo    purchase.PurchaseOrderRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	variantRepo inventory.VariantRepository,
	movementRepo inventory.StockMovementRepository,
	productRepo catalog.ProductRepository,
	orderRepo purchase.PurchaseOrderRepository,
) *AnalyticsService {
	return &AnalyticsService{
		variantRepo:  variantRepo,
		movementRepo: movementRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
}

// loadProducts fetches the products for a set of variants, keyed by ID
func (s *AnalyticsService) loadProducts(ctx context.Context, tenantID uuid.UUID, variants []inventory.Variant) (map[uuid.UUID]*catalog.Product, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, variant := range variants {
		if _, ok := seen[variant.ProductID]; ok {
			continue
		}
		seen[variant.ProductID] = struct{}{}
		ids = append(ids, variant.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for idx := range products {
		byID[products[idx].ID] = &products[idx]
	}
	return byID, nil
}

// allVariants pages through every variant of the tenant
func (s *AnalyticsService) allVariants(ctx context.Context, tenantID uuid.UUID) ([]inventory.Variant, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 500

	all := make([]inventory.Variant, 0)
	for {
		page, err := s.variantRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < filter.PageSize {
			return all, nil
		}
		filter.Page++
	}
}

// InventoryValue computes the total retail value of on-hand stock: the sum
// over all variants of stock times the variant's effective price. Overrides
// win over the product base price per SKU.
func (s *AnalyticsService) InventoryValue(ctx context.Context, tenantID uuid.UUID) (*InventoryValueResponse, error) {
	variants, err := s.allVariants(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, tenantID, variants)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	var units int64
	for _, variant := range variants {
		units += variant.Stock
		product, ok := products[variant.ProductID]
		if !ok {
			continue
		}
		price := product.EffectivePrice(variant.SKU)
		total = total.Add(price.Mul(decimal.NewFromInt(variant.Stock)))
	}

	return &InventoryValueResponse{
		TotalValue:   total,
		VariantCount: len(variants),
		TotalUnits:   units,
	}, nil
}

// LowStock lists variants whose on-hand stock is below the threshold,
// projecting incoming quantities from open purchase orders. totalAvailable
// is stock plus pending; the result is sorted ascending by totalAvailable
// so the most urgent variants come first.
func (s *AnalyticsService) LowStock(ctx context.Context, tenantID uuid.UUID, threshold int64) ([]LowStockItem, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	variants, err := s.variantRepo.FindBelowStock(ctx, tenantID, threshold, 0)
	if err != nil {
		return nil, err
	}

	pending, err := s.orderRepo.PendingQuantities(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pendingByVariant := make(map[uuid.UUID]int64, len(pending))
	for _, p := range pending {
		pendingByVariant[p.VariantID] = p.PendingQuantity
	}

	items := make([]LowStockItem, 0, len(variants))
	for _, variant := range variants {
		pendingQty := pendingByVariant[variant.ID]
		totalAvailable := variant.Stock + pendingQty
		items = append(items, LowStockItem{
			VariantID:       variant.ID,
			ProductID:       variant.ProductID,
			SKU:             variant.SKU,
			Stock:           variant.Stock,
			PendingQuantity: pendingQty,
			TotalAvailable:  totalAvailable,
			IsLowStock:      totalAvailable < threshold,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalAvailable != items[j].TotalAvailable {
			return items[i].TotalAvailable < items[j].TotalAvailable
		}
		return items[i].SKU < items[j].SKU
	})

	return items, nil
}

// TopSellers ranks products by absolute sold quantity over the trailing
// window, at most TopSellerLimit entries, best seller first.
func (s *AnalyticsService) TopSellers(ctx context.Context, tenantID uuid.UUID, window time.Duration) ([]TopSellerItem, error) {
	if window <= 0 {
		window = DefaultTopSellerWindow
	}
	since := time.Now().Add(-window)

	sales, err := s.movementRepo.SumSalesByProduct(ctx, tenantID, since, TopSellerLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(sales))
	for idx, sale := range sales {
		ids[idx] = sale.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, product := range products {
		names[product.ID] = product.Name
	}

	items := make([]TopSellerItem, len(sales))
	for idx, sale := range sales {
		items[idx] = TopSellerItem{
			ProductID:         sale.ProductID,
			ProductName:       names[sale.ProductID],
			TotalQuantitySold: sale.TotalQuantitySold,
		}
	}
	return items, nil
}

// MovementSeries returns per-day absolute movement totals per type for the
// trailing number of days, today included. Every day in the window appears
// exactly once, zero-filled when nothing moved.
func (s *AnalyticsService) MovementSeries(ctx context.Context, tenantID uuid.UUID, days int) ([]MovementSeriesPoint, error) {
	if days <= 0 {
		days = DefaultSeriesDays
	}

	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	totals, err := s.movementRepo.DailyTotalsByType(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]MovementSeriesPoint, days)
	index := make(map[string]*MovementSeriesPoint, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = MovementSeriesPoint{Date: date}
		index[date] = &points[i]
	}

	for _, total := range totals {
		point, ok := index[total.Date]
		if !ok {
			continue
		}
		switch total.MovementType {
		case inventory.MovementTypePurchase:
			point.Purchase = total.TotalQuantity
		case inventory.MovementTypeSale:
			point.Sale = total.TotalQuantity
		case inventory.MovementTypeReturn:
			point.Return = total.TotalQuantity
		case inventory.MovementTypeAdjustment:
			point.Adjustment = total.TotalQuantity
		}
	}

	return points, nil
}

// Dashboard aggregates all analytics views in one response
func (s *AnalyticsService) Dashboard(ctx context.Context, tenantID uuid.UUID, threshold int64, days int) (*DashboardResponse, error) {
	value, err := s.InventoryValue(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.LowStock(ctx, tenantID, threshold)
	if err != nil {
		return nil, err
	}
	topSellers, err := s.TopSellers(ctx, tenantID, 0)
	if err != nil {
		return nil, err
	}
	series, err := s.MovementSeries(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		InventoryValue: *value,
		LowStock:       lowStock,
		TopSellers:     topSellers,
		MovementSeries: series,
	}, nil
}
