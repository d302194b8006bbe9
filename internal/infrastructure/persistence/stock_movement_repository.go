package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// Movements are append-only; there is no update or delete method here and
// none may be added.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append inserts a new movement record
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByVariant finds movements for a variant, newest first
func (r *GormStockMovementRepository) FindByVariant(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variant_id = ?", tenantID, variantID).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindForTenant finds movements for a tenant with filtering and pagination
func (r *GormStockMovementRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.movementQuery(ctx, tenantID, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountForTenant counts movements matching the filter
func (r *GormStockMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) (int64, error) {
	var count int64
	if err := r.movementQuery(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByVariant returns the signed sum of all movement quantities for
// a variant
func (r *GormStockMovementRepository) SumQuantityByVariant(ctx context.Context, tenantID, variantID uuid.UUID) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND variant_id = ?", tenantID, variantID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// SumSalesByProduct sums absolute sale quantities per product since the given
// time. Sale movements carry negative quantities, so the sum is negated.
func (r *GormStockMovementRepository) SumSalesByProduct(ctx context.Context, tenantID uuid.UUID, since time.Time, limit int) ([]inventory.ProductSales, error) {
	var rows []struct {
		ProductID uuid.UUID
		Total     int64
	}
	query := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select("product_id, COALESCE(SUM(-quantity), 0) as total").
		Where("tenant_id = ? AND movement_type = ? AND created_at >= ?", tenantID, inventory.MovementTypeSale, since).
		Group("product_id").
		Order("total DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	sales := make([]inventory.ProductSales, len(rows))
	for idx, row := range rows {
		sales[idx] = inventory.ProductSales{
			ProductID:         row.ProductID,
			TotalQuantitySold: row.Total,
		}
	}
	return sales, nil
}

// DailyTotalsByType returns absolute moved quantity grouped by day and
// movement type within [start, end)
func (r *GormStockMovementRepository) DailyTotalsByType(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]inventory.DailyMovementTotal, error) {
	day := r.dayExpr()

	var rows []struct {
		Day          string
		MovementType inventory.MovementType
		Total        int64
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select(day + " as day, movement_type, COALESCE(SUM(ABS(quantity)), 0) as total").
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, start, end).
		Group(day + ", movement_type").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]inventory.DailyMovementTotal, len(rows))
	for idx, row := range rows {
		totals[idx] = inventory.DailyMovementTotal{
			Date:          row.Day,
			MovementType:  row.MovementType,
			TotalQuantity: row.Total,
		}
	}
	return totals, nil
}

// dayExpr returns the SQL expression that truncates created_at to a
// YYYY-MM-DD string for the active dialect
func (r *GormStockMovementRepository) dayExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-%d', created_at)"
	}
	return "to_char(created_at, 'YYYY-MM-DD')"
}

// movementQuery builds the base filtered query for movements
func (r *GormStockMovementRepository) movementQuery(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("tenant_id = ?", tenantID)

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.VariantID != nil {
		query = query.Where("variant_id = ?", *filter.VariantID)
	}
	if filter.VariantSKU != "" {
		query = query.Where("variant_sku = ?", strings.ToUpper(strings.TrimSpace(filter.VariantSKU)))
	}
	if filter.MovementType != nil {
		query = query.Where("movement_type = ?", *filter.MovementType)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at < ?", *filter.EndDate)
	}

	return query
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
