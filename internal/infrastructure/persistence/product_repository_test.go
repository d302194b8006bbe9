package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocktrack/backend/internal/domain/catalog"
	"github.com/stocktrack/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProduct(t *testing.T, tenantID uuid.UUID, code, name string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, code, name, "", decimal.NewFromFloat(19.99))
	require.NoError(t, err)
	return product
}

func TestGormProductRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	tenantID := uuid.New()

	product := mustProduct(t, tenantID, "TSHIRT", "Basic T-Shirt")
	require.NoError(t, product.SetPriceOverride("TSHIRT-XL-BLACK", decimal.NewFromFloat(22.99)))
	require.NoError(t, repo.Create(ctx, product))

	t.Run("find by ID preloads overrides", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)
		require.Len(t, found.PriceOverrides, 1)
		assert.True(t, found.EffectivePrice("TSHIRT-XL-BLACK").Equal(decimal.NewFromFloat(22.99)))
		assert.True(t, found.EffectivePrice("TSHIRT-M-BLACK").Equal(decimal.NewFromFloat(19.99)))
	})

	t.Run("find by code is case insensitive", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, tenantID, "tshirt")
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
	})

	t.Run("duplicate code within tenant fails", func(t *testing.T) {
		dup := mustProduct(t, tenantID, "TSHIRT", "Another Shirt")
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrDuplicateKey)
	})

	t.Run("save replaces overrides wholesale", func(t *testing.T) {
		loaded, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)

		loaded.RemovePriceOverride("TSHIRT-XL-BLACK")
		require.NoError(t, loaded.SetPriceOverride("TSHIRT-S-RED", decimal.NewFromFloat(17.50)))
		require.NoError(t, repo.Save(ctx, loaded))

		found, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)
		require.Len(t, found.PriceOverrides, 1)
		assert.Equal(t, "TSHIRT-S-RED", found.PriceOverrides[0].SKU)
	})

	t.Run("stale save fails with concurrency conflict", func(t *testing.T) {
		stale, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)
		fresh, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)

		require.NoError(t, fresh.Update("Fresh Name", "", decimal.NewFromInt(20)))
		require.NoError(t, repo.Save(ctx, fresh))

		require.NoError(t, stale.Update("Stale Name", "", decimal.NewFromInt(21)))
		err = repo.Save(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("find by IDs skips other tenants", func(t *testing.T) {
		foreign := mustProduct(t, uuid.New(), "FOREIGN", "Foreign Product")
		require.NoError(t, repo.Create(ctx, foreign))

		products, err := repo.FindByIDs(ctx, tenantID, []uuid.UUID{product.ID, foreign.ID})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, product.ID, products[0].ID)
	})

	t.Run("search by name", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "Fresh"

		products, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
	})

	t.Run("delete removes product and overrides", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantID, product.ID))

		_, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var overrideCount int64
		require.NoError(t, db.Model(&catalog.PriceOverride{}).Where("product_id = ?", product.ID).Count(&overrideCount).Error)
		assert.Zero(t, overrideCount)
	})
}
