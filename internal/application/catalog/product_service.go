package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/catalog"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// ProductService handles catalog operations: products and their per-SKU
// price overrides
type ProductService struct {
	productRepo catalog.ProductRepository
	variantRepo inventory.VariantRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, variantRepo inventory.VariantRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, tenantID, actorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(tenantID, req.ProductCode, req.Name, req.Description, req.BasePrice)
	if err != nil {
		return nil, err
	}
	product.SetCreatedBy(actorID)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// ListProducts retrieves products with filtering and pagination
func (s *ProductService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// UpdateProduct updates a product's display fields and base price
func (s *ProductService) UpdateProduct(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Description, req.BasePrice); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// SetPriceOverride sets the explicit price for one of the product's variant
// SKUs. The SKU must belong to a variant of this product.
func (s *ProductService) SetPriceOverride(ctx context.Context, tenantID, productID uuid.UUID, req SetPriceOverrideRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.variantRepo.FindByProductAndSKU(ctx, tenantID, productID, req.SKU); err != nil {
		return nil, err
	}
	if err := product.SetPriceOverride(req.SKU, req.Price); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// RemovePriceOverride removes the explicit price for a SKU, restoring the
// base price
func (s *ProductService) RemovePriceOverride(ctx context.Context, tenantID, productID uuid.UUID, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	product.RemovePriceOverride(sku)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// DeleteProduct deletes a product that has no variants left
func (s *ProductService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return err
	}
	variants, err := s.variantRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if len(variants) > 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot delete a product that still has variants")
	}
	return s.productRepo.DeleteForTenant(ctx, tenantID, productID)
}
