package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByIDForTenant finds a variant by ID within a tenant
func (r *GormVariantRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Variant, error) {
	var variant inventory.Variant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// FindBySKU finds a variant by its SKU within a tenant
func (r *GormVariantRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*inventory.Variant, error) {
	var variant inventory.Variant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, strings.ToUpper(strings.TrimSpace(sku))).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// FindByProductAndSKU finds a variant by product and SKU within a tenant
func (r *GormVariantRepository) FindByProductAndSKU(ctx context.Context, tenantID, productID uuid.UUID, sku string) (*inventory.Variant, error) {
	var variant inventory.Variant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND sku = ?", tenantID, productID, strings.ToUpper(strings.TrimSpace(sku))).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// FindByProduct finds all variants of a product
func (r *GormVariantRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.Variant, error) {
	var variants []inventory.Variant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("sku ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindAllForTenant finds all variants for a tenant
func (r *GormVariantRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Variant, error) {
	var variants []inventory.Variant
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Variant{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindBelowStock finds variants whose on-hand stock is below the threshold
func (r *GormVariantRepository) FindBelowStock(ctx context.Context, tenantID uuid.UUID, threshold int64, limit int) ([]inventory.Variant, error) {
	var variants []inventory.Variant
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND stock < ?", tenantID, threshold).
		Order("stock ASC, sku ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Create inserts a new variant
func (r *GormVariantRepository) Create(ctx context.Context, variant *inventory.Variant) error {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicateKey
		}
		return err
	}
	variant.MarkPersisted()
	return nil
}

// Save updates variant identity fields. Quantities are excluded: the only
// write path for stock and reserved_stock is ApplyDelta.
func (r *GormVariantRepository) Save(ctx context.Context, variant *inventory.Variant) error {
	result := r.db.WithContext(ctx).
		Model(variant).
		Where("tenant_id = ? AND id = ? AND version = ?", variant.TenantID, variant.ID, variant.StoredVersion()).
		Updates(map[string]interface{}{
			"sku":        variant.SKU,
			"size":       variant.Size,
			"color":      variant.Color,
			"version":    variant.Version,
			"updated_at": variant.UpdatedAt,
		})

	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return shared.ErrDuplicateKey
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	variant.MarkPersisted()
	return nil
}

// ApplyDelta applies stock and reservation deltas as one conditional UPDATE.
// The WHERE clause re-states the variant invariants against the current row,
// so the write succeeds only if they hold at write time. A zero-row result is
// re-fetched and classified into the exact domain error the caller expects.
func (r *GormVariantRepository) ApplyDelta(ctx context.Context, tenantID, id uuid.UUID, stockDelta, reservedDelta int64) (*inventory.Variant, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.Variant{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("stock + ? >= 0", stockDelta).
		Where("reserved_stock + ? >= 0", reservedDelta).
		Where("reserved_stock + ? <= stock + ?", reservedDelta, stockDelta).
		Updates(map[string]interface{}{
			"stock":          gorm.Expr("stock + ?", stockDelta),
			"reserved_stock": gorm.Expr("reserved_stock + ?", reservedDelta),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		variant, err := r.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if err := variant.CheckDelta(stockDelta, reservedDelta); err != nil {
			return nil, err
		}
		// The row satisfied the invariants on re-read, so another writer
		// moved it between our UPDATE and the fetch.
		return nil, shared.ErrConcurrencyConflict
	}

	return r.FindByIDForTenant(ctx, tenantID, id)
}

// DeleteForTenant deletes a variant within a tenant
func (r *GormVariantRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.Variant{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts variants for a tenant
func (r *GormVariantRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Variant{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormVariantRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToUpper(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("sku LIKE ?", pattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, VariantSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormVariantRepository implements VariantRepository
var _ inventory.VariantRepository = (*GormVariantRepository)(nil)
