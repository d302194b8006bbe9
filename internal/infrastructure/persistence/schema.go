package persistence

import (
	"github.com/stocktrack/backend/internal/domain/catalog"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/purchase"
	"gorm.io/gorm"
)

// tenantUniqueIndexes are composite unique constraints that span the
// tenant column from the embedded aggregate root, which struct tags
// cannot express. Deployed databases get the same indexes from the SQL
// migrations.
var tenantUniqueIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_variant_tenant_sku ON variants (tenant_id, sku)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_variant_identity ON variants (tenant_id, product_id, size, color)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_tenant_code ON products (tenant_id, product_code)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_po_tenant_number ON purchase_orders (tenant_id, po_number)",
}

// AutoMigrate builds the full schema from the domain models, including
// the tenant-scoped unique indexes. Intended for tests and local
// development; deployments apply the versioned SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&inventory.Variant{},
		&inventory.StockMovement{},
		&catalog.Product{},
		&catalog.PriceOverride{},
		&purchase.PurchaseOrder{},
		&purchase.PurchaseOrderLine{},
		&purchase.Receipt{},
		&purchase.ReceiptEntry{},
	); err != nil {
		return err
	}
	for _, stmt := range tenantUniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
