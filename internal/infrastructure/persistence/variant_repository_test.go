package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustVariant reuses the SKU as the size so fixtures sharing a product never
// collide on the (product, size, color) identity.
func mustVariant(t *testing.T, tenantID, productID uuid.UUID, sku string, stock, reserved int64) *inventory.Variant {
	t.Helper()
	variant, err := inventory.NewVariant(tenantID, productID, sku, sku, "black", stock, reserved)
	require.NoError(t, err)
	return variant
}

func TestGormVariantRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormVariantRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	t.Run("create and find by ID", func(t *testing.T) {
		variant := mustVariant(t, tenantID, productID, "TSHIRT-M-BLACK", 10, 2)
		require.NoError(t, repo.Create(ctx, variant))

		found, err := repo.FindByIDForTenant(ctx, tenantID, variant.ID)
		require.NoError(t, err)
		assert.Equal(t, "TSHIRT-M-BLACK", found.SKU)
		assert.Equal(t, int64(10), found.Stock)
		assert.Equal(t, int64(2), found.ReservedStock)
	})

	t.Run("find by SKU is case insensitive", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, tenantID, "tshirt-m-black")
		require.NoError(t, err)
		assert.Equal(t, "TSHIRT-M-BLACK", found.SKU)
	})

	t.Run("duplicate SKU within tenant fails", func(t *testing.T) {
		dup := mustVariant(t, tenantID, uuid.New(), "TSHIRT-M-BLACK", 0, 0)
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrDuplicateKey)
	})

	t.Run("same SKU in another tenant is allowed", func(t *testing.T) {
		other := mustVariant(t, uuid.New(), uuid.New(), "TSHIRT-M-BLACK", 0, 0)
		require.NoError(t, repo.Create(ctx, other))
	})

	t.Run("duplicate size and color for the product fails", func(t *testing.T) {
		first, err := inventory.NewVariant(tenantID, productID, "HOODIE-S-GREEN", "S", "green", 0, 0)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		clash, err := inventory.NewVariant(tenantID, productID, "HOODIE-S-GREEN-2", "S", "green", 0, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, clash), shared.ErrDuplicateKey)
	})

	t.Run("wrong tenant cannot read the variant", func(t *testing.T) {
		variant := mustVariant(t, tenantID, productID, "ISOLATED-SKU", 5, 0)
		require.NoError(t, repo.Create(ctx, variant))

		_, err := repo.FindByIDForTenant(ctx, uuid.New(), variant.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormVariantRepository_ApplyDelta(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, stock, reserved int64) (*GormVariantRepository, *inventory.Variant) {
		db := newTestDB(t)
		repo := NewGormVariantRepository(db)
		variant := mustVariant(t, uuid.New(), uuid.New(), "DELTA-SKU", stock, reserved)
		require.NoError(t, repo.Create(ctx, variant))
		return repo, variant
	}

	t.Run("applies stock delta and bumps version", func(t *testing.T) {
		repo, variant := setup(t, 10, 0)

		updated, err := repo.ApplyDelta(ctx, variant.TenantID, variant.ID, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), updated.Stock)
		assert.Equal(t, int64(0), updated.ReservedStock)
		assert.Equal(t, variant.Version+1, updated.Version)
	})

	t.Run("applies combined stock and reservation delta", func(t *testing.T) {
		repo, variant := setup(t, 10, 4)

		// Fulfillment consumes stock and reservation together
		updated, err := repo.ApplyDelta(ctx, variant.TenantID, variant.ID, -3, -3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), updated.Stock)
		assert.Equal(t, int64(1), updated.ReservedStock)
	})

	t.Run("insufficient stock leaves the row untouched", func(t *testing.T) {
		repo, variant := setup(t, 10, 0)

		_, err := repo.ApplyDelta(ctx, variant.TenantID, variant.ID, -11, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		found, err := repo.FindByIDForTenant(ctx, variant.TenantID, variant.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), found.Stock)
		assert.Equal(t, variant.Version, found.Version)
	})

	t.Run("reserving beyond available fails", func(t *testing.T) {
		repo, variant := setup(t, 10, 8)

		_, err := repo.ApplyDelta(ctx, variant.TenantID, variant.ID, 0, 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientAvailableStock)
	})

	t.Run("releasing beyond reserved fails", func(t *testing.T) {
		repo, variant := setup(t, 10, 2)

		_, err := repo.ApplyDelta(ctx, variant.TenantID, variant.ID, 0, -3)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientReservedStock)
	})

	t.Run("sale cannot consume reserved stock", func(t *testing.T) {
		repo, variant := setup(t, 10, 8)

		// 10 - 8 reserved leaves 2 available, selling 3 must fail
		_, err := repo.ApplyDelta(ctx, variant.TenantID, variant.ID, -3, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientAvailableStock)
	})

	t.Run("unknown variant fails with not found", func(t *testing.T) {
		repo, variant := setup(t, 10, 0)

		_, err := repo.ApplyDelta(ctx, variant.TenantID, uuid.New(), 1, 0)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("wrong tenant fails with not found", func(t *testing.T) {
		repo, variant := setup(t, 10, 0)

		_, err := repo.ApplyDelta(ctx, uuid.New(), variant.ID, 1, 0)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormVariantRepository_ConcurrentReserve(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormVariantRepository(db)

	variant := mustVariant(t, uuid.New(), uuid.New(), "RACE-SKU", 10, 0)
	require.NoError(t, repo.Create(ctx, variant))

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = repo.ApplyDelta(ctx, variant.TenantID, variant.ID, 0, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 10, succeeded, "exactly the available stock may be reserved")

	found, err := repo.FindByIDForTenant(ctx, variant.TenantID, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), found.ReservedStock)
	assert.Equal(t, int64(10), found.Stock)
}

func TestGormVariantRepository_FindBelowStock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormVariantRepository(db)
	tenantID := uuid.New()
	productID := uuid.New()

	for _, fixture := range []struct {
		sku   string
		stock int64
	}{
		{"LOW-A", 2},
		{"LOW-B", 7},
		{"HIGH-C", 50},
		{"ZERO-D", 0},
	} {
		v, err := inventory.NewVariant(tenantID, productID, fixture.sku, fixture.sku, "red", fixture.stock, 0)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, v))
	}

	variants, err := repo.FindBelowStock(ctx, tenantID, 10, 0)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, "ZERO-D", variants[0].SKU)
	assert.Equal(t, "LOW-A", variants[1].SKU)
	assert.Equal(t, "LOW-B", variants[2].SKU)

	t.Run("limit caps the result", func(t *testing.T) {
		limited, err := repo.FindBelowStock(ctx, tenantID, 10, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})
}

func TestGormVariantRepository_FindAllForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormVariantRepository(db)
	tenantID := uuid.New()
	productID := uuid.New()

	for _, sku := range []string{"AAA-1", "BBB-2", "CCC-3"} {
		v, err := inventory.NewVariant(tenantID, productID, sku, sku, "blue", 1, 0)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, v))
	}

	t.Run("search narrows by SKU", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "bbb"

		variants, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, variants, 1)
		assert.Equal(t, "BBB-2", variants[0].SKU)
	})

	t.Run("pagination", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 2, OrderBy: "sku", OrderDir: "asc"}

		page, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "AAA-1", page[0].SKU)

		count, err := repo.CountForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
