package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// StockService handles variant and stock mutation operations.
//
// Every quantity change goes through a conditional delta write plus a ledger
// append inside one transaction scope. Reads of previous/new stock always
// come from the applied update, never from an earlier fetch, so concurrent
// mutations can interleave without producing inconsistent ledger entries.
type StockService struct {
	variantRepo    inventory.VariantRepository
	movementRepo   inventory.StockMovementRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(
	variantRepo inventory.VariantRepository,
	movementRepo inventory.StockMovementRepository,
	scope TransactionScope,
) *StockService {
	return &StockService{
		variantRepo:  variantRepo,
		movementRepo: movementRepo,
		scope:        scope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishStockChanged publishes a stock changed event for a committed movement.
// Publish failures are swallowed; delivery is best-effort and must never
// affect the committed mutation.
func (s *StockService) publishStockChanged(ctx context.Context, movement *inventory.StockMovement) {
	if s.eventPublisher == nil || movement == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, inventory.NewStockChangedEvent(movement))
}

// CreateVariant creates a variant under a product. A non-zero initial stock
// is recorded as an adjustment movement so the ledger replays to the correct
// quantity from the variant's first day.
func (s *StockService) CreateVariant(ctx context.Context, tenantID, actorID uuid.UUID, req CreateVariantRequest) (*VariantResponse, error) {
	variant, err := inventory.NewVariant(tenantID, req.ProductID, req.SKU, req.Size, req.Color, req.InitialStock, 0)
	if err != nil {
		return nil, err
	}
	variant.SetCreatedBy(actorID)

	var movement *inventory.StockMovement
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.VariantRepo().Create(ctx, variant); err != nil {
			return err
		}
		if req.InitialStock == 0 {
			return nil
		}

		movement, err = inventory.NewStockMovement(
			tenantID, variant.ProductID, variant.ID, variant.SKU,
			inventory.MovementTypeAdjustment,
			req.InitialStock, 0, req.InitialStock,
			actorID,
		)
		if err != nil {
			return err
		}
		movement.WithNotes("Initial stock")
		return repos.MovementRepo().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishStockChanged(ctx, movement)

	response := ToVariantResponse(variant)
	return &response, nil
}

// GetVariant retrieves a variant by ID
func (s *StockService) GetVariant(ctx context.Context, tenantID, variantID uuid.UUID) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindByIDForTenant(ctx, tenantID, variantID)
	if err != nil {
		return nil, err
	}
	response := ToVariantResponse(variant)
	return &response, nil
}

// GetVariantBySKU retrieves a variant by SKU
func (s *StockService) GetVariantBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	response := ToVariantResponse(variant)
	return &response, nil
}

// ListVariants retrieves variants with filtering and pagination
func (s *StockService) ListVariants(ctx context.Context, tenantID uuid.UUID, filter VariantListFilter) ([]VariantResponse, int64, error) {
	if filter.ProductID != nil {
		variants, err := s.variantRepo.FindByProduct(ctx, tenantID, *filter.ProductID)
		if err != nil {
			return nil, 0, err
		}
		return ToVariantResponses(variants), int64(len(variants)), nil
	}

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

	variants, err := s.variantRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.variantRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToVariantResponses(variants), total, nil
}

// Mutate applies one stock mutation to a variant. The quantity sign is
// normalized by movement type: purchase and return add, sale subtracts,
// adjustment carries the caller's sign. The conditional update and the
// ledger append commit atomically.
func (s *StockService) Mutate(ctx context.Context, tenantID, actorID uuid.UUID, req MutateStockRequest) (*StockMutationResponse, error) {
	movementType := inventory.MovementType(req.MovementType)
	if !movementType.IsValid() {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid movement type: %s", req.MovementType)
	}
	if req.Quantity == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity cannot be zero")
	}

	quantity := movementType.NormalizeQuantity(req.Quantity)

	var reference *inventory.Reference
	if req.ReferenceID != nil {
		refType := inventory.ReferenceType(req.ReferenceType)
		if !refType.IsValid() {
			return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid reference type: %s", req.ReferenceType)
		}
		reference = &inventory.Reference{ID: *req.ReferenceID, Type: refType}
	}

	var (
		updated  *inventory.Variant
		movement *inventory.StockMovement
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		updated, err = repos.VariantRepo().ApplyDelta(ctx, tenantID, req.VariantID, quantity, 0)
		if err != nil {
			return err
		}

		movement, err = inventory.NewStockMovement(
			tenantID, updated.ProductID, updated.ID, updated.SKU,
			movementType,
			quantity, updated.Stock-quantity, updated.Stock,
			actorID,
		)
		if err != nil {
			return err
		}
		movement.WithReference(reference).WithNotes(req.Notes)
		return repos.MovementRepo().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishStockChanged(ctx, movement)

	return &StockMutationResponse{
		VariantID:      updated.ID,
		SKU:            updated.SKU,
		MovementID:     &movement.ID,
		MovementType:   movementType.String(),
		Quantity:       quantity,
		PreviousStock:  movement.PreviousStock,
		NewStock:       movement.NewStock,
		ReservedStock:  updated.ReservedStock,
		AvailableStock: updated.AvailableStock(),
	}, nil
}

// Reserve earmarks available stock for later fulfillment. The on-hand
// quantity does not change, so no ledger entry is written.
func (s *StockService) Reserve(ctx context.Context, tenantID uuid.UUID, req ReserveStockRequest) (*StockMutationResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reserve quantity must be positive")
	}

	updated, err := s.variantRepo.ApplyDelta(ctx, tenantID, req.VariantID, 0, req.Quantity)
	if err != nil {
		return nil, err
	}

	return &StockMutationResponse{
		VariantID:      updated.ID,
		SKU:            updated.SKU,
		Quantity:       req.Quantity,
		PreviousStock:  updated.Stock,
		NewStock:       updated.Stock,
		ReservedStock:  updated.ReservedStock,
		AvailableStock: updated.AvailableStock(),
	}, nil
}

// Release returns reserved stock to the available pool. The on-hand
// quantity does not change, so no ledger entry is written.
func (s *StockService) Release(ctx context.Context, tenantID uuid.UUID, req ReleaseStockRequest) (*StockMutationResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Release quantity must be positive")
	}

	updated, err := s.variantRepo.ApplyDelta(ctx, tenantID, req.VariantID, 0, -req.Quantity)
	if err != nil {
		return nil, err
	}

	return &StockMutationResponse{
		VariantID:      updated.ID,
		SKU:            updated.SKU,
		Quantity:       req.Quantity,
		PreviousStock:  updated.Stock,
		NewStock:       updated.Stock,
		ReservedStock:  updated.ReservedStock,
		AvailableStock: updated.AvailableStock(),
	}, nil
}

// Fulfill consumes reserved stock: both on-hand and reserved quantities drop
// by the requested amount in one conditional write, and a sale movement is
// appended so the ledger still replays to the on-hand quantity.
func (s *StockService) Fulfill(ctx context.Context, tenantID, actorID uuid.UUID, req FulfillStockRequest) (*StockMutationResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Fulfill quantity must be positive")
	}

	var reference *inventory.Reference
	if req.ReferenceID != nil {
		reference = &inventory.Reference{ID: *req.ReferenceID, Type: inventory.ReferenceTypeOrder}
	}

	var (
		updated  *inventory.Variant
		movement *inventory.StockMovement
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		updated, err = repos.VariantRepo().ApplyDelta(ctx, tenantID, req.VariantID, -req.Quantity, -req.Quantity)
		if err != nil {
			return err
		}

		movement, err = inventory.NewStockMovement(
			tenantID, updated.ProductID, updated.ID, updated.SKU,
			inventory.MovementTypeSale,
			-req.Quantity, updated.Stock+req.Quantity, updated.Stock,
			actorID,
		)
		if err != nil {
			return err
		}
		movement.WithReference(reference).WithNotes(req.Notes)
		return repos.MovementRepo().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishStockChanged(ctx, movement)

	return &StockMutationResponse{
		VariantID:      updated.ID,
		SKU:            updated.SKU,
		MovementID:     &movement.ID,
		MovementType:   inventory.MovementTypeSale.String(),
		Quantity:       -req.Quantity,
		PreviousStock:  movement.PreviousStock,
		NewStock:       movement.NewStock,
		ReservedStock:  updated.ReservedStock,
		AvailableStock: updated.AvailableStock(),
	}, nil
}

// ListMovements retrieves ledger entries with filtering and pagination
func (s *StockService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := inventory.MovementFilter{
		Filter:     shared.DefaultFilter(),
		ProductID:  filter.ProductID,
		VariantID:  filter.VariantID,
		VariantSKU: filter.VariantSKU,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.MovementType != "" {
		movementType := inventory.MovementType(filter.MovementType)
		if !movementType.IsValid() {
			return nil, 0, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid movement type: %s", filter.MovementType)
		}
		domainFilter.MovementType = &movementType
	}

	movements, err := s.movementRepo.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToMovementResponses(movements), total, nil
}

// GetVariantMovements retrieves the ledger for one variant, newest first
func (s *StockService) GetVariantMovements(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	if _, err := s.variantRepo.FindByIDForTenant(ctx, tenantID, variantID); err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.FindByVariant(ctx, tenantID, variantID, filter)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}
