package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/purchase"
	"github.com/stocktrack/backend/internal/domain/shared"
)

const (
	poNumberKind      = "PO"
	receiptNumberKind = "REC"
)

// PurchaseOrderService handles the purchase order workflow: creation and
// draft editing, caller-requested status transitions, and receipt recording
// with its stock side effects.
type PurchaseOrderService struct {
	orderRepo      purchase.PurchaseOrderRepository
	receiptRepo    purchase.ReceiptRepository
	variantRepo    inventory.VariantRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo purchase.PurchaseOrderRepository,
	receiptRepo purchase.ReceiptRepository,
	variantRepo inventory.VariantRepository,
	scope TransactionScope,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:   orderRepo,
		receiptRepo: receiptRepo,
		variantRepo: variantRepo,
		scope:       scope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes and clears the order's buffered events plus
// any extra events, after the surrounding transaction has committed
func (s *PurchaseOrderService) publishDomainEvents(ctx context.Context, order *purchase.PurchaseOrder, extra ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	events := append(order.GetDomainEvents(), extra...)
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	order.ClearDomainEvents()
}

// nextNumber builds the daily sequence number for orders or receipts, e.g.
// PO-20260831-0001. The per-tenant unique index is the backstop if two
// writers race to the same sequence.
func nextNumber(kind string, date time.Time, existing int64) string {
	return fmt.Sprintf("%s-%s-%04d", kind, date.Format("20060102"), existing+1)
}

// numberPrefix returns the daily prefix for counting, e.g. PO-20260831-
func numberPrefix(kind string, date time.Time) string {
	return fmt.Sprintf("%s-%s-", kind, date.Format("20060102"))
}

// resolveLine validates a requested line against the variant store
func (s *PurchaseOrderService) resolveLine(ctx context.Context, tenantID uuid.UUID, order *purchase.PurchaseOrder, req OrderLineRequest) error {
	variant, err := s.variantRepo.FindByIDForTenant(ctx, tenantID, req.VariantID)
	if err != nil {
		return err
	}
	if variant.ProductID != req.ProductID {
		return shared.NewDomainErrorf("VALIDATION_ERROR", "Variant %s does not belong to product %s", req.VariantID, req.ProductID)
	}
	_, err = order.AddLine(variant.ProductID, variant.ID, variant.SKU, req.QuantityOrdered, req.ExpectedPrice)
	return err
}

// CreateOrder creates a purchase order in draft status with an auto-assigned
// PO number
func (s *PurchaseOrderService) CreateOrder(ctx context.Context, tenantID, actorID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	existing, err := s.orderRepo.CountByNumberPrefix(ctx, tenantID, numberPrefix(poNumberKind, orderDate))
	if err != nil {
		return nil, err
	}

	order, err := purchase.NewPurchaseOrder(tenantID, nextNumber(poNumberKind, orderDate, existing), req.SupplierName, orderDate)
	if err != nil {
		return nil, err
	}
	order.SetCreatedBy(actorID)
	order.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	order.Notes = req.Notes

	for _, lineReq := range req.Lines {
		if err := s.resolveLine(ctx, tenantID, order, lineReq); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrder retrieves a purchase order with its receipts and derived price
// variance
func (s *PurchaseOrderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderDetailResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	receipts, err := s.receiptRepo.FindByPurchaseOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	lineVariances := order.LineVariances(receipts)
	variances := make([]LineVarianceResponse, len(lineVariances))
	for idx, lv := range lineVariances {
		variances[idx] = LineVarianceResponse{
			LineID:           lv.LineID,
			VariantSKU:       lv.VariantSKU,
			ExpectedPrice:    lv.ExpectedPrice,
			QuantityReceived: lv.QuantityReceived,
			Variance:         lv.Variance,
		}
	}

	return &OrderDetailResponse{
		OrderResponse: ToOrderResponse(order),
		Receipts:      ToReceiptResponses(receipts),
		LineVariances: variances,
		TotalVariance: order.PriceVariance(receipts),
	}, nil
}

// ListOrders retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := purchase.PurchaseOrderFilter{
		Filter:       shared.DefaultFilter(),
		SupplierName: filter.SupplierName,
		StartDate:    filter.StartDate,
		EndDate:      filter.EndDate,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := purchase.PurchaseOrderStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid status: %s", filter.Status)
		}
		domainFilter.Status = &status
	}

	orders, err := s.orderRepo.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

// UpdateOrder updates a draft order's details and replaces its lines
func (s *PurchaseOrderService) UpdateOrder(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.UpdateDetails(req.SupplierName, req.Notes, req.ExpectedDeliveryDate); err != nil {
		return nil, err
	}

	for len(order.Lines) > 0 {
		if err := order.RemoveLine(order.Lines[0].ID); err != nil {
			return nil, err
		}
	}
	for _, lineReq := range req.Lines {
		if err := s.resolveLine(ctx, tenantID, order, lineReq); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// DeleteOrder deletes a draft order with its lines and receipts
func (s *PurchaseOrderService) DeleteOrder(ctx context.Context, tenantID, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if !order.IsDraft() {
		return shared.NewDomainErrorf(shared.ErrInvalidTransition.Code, "Cannot delete a %s purchase order", order.Status)
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ReceiptRepo().DeleteByPurchaseOrder(ctx, tenantID, orderID); err != nil {
			return err
		}
		return repos.OrderRepo().DeleteForTenant(ctx, tenantID, orderID)
	})
}

// Transition applies a caller-requested status change. Requesting received
// directly always fails; that status is only reached via RecordReceipt.
func (s *PurchaseOrderService) Transition(ctx context.Context, tenantID, orderID uuid.UUID, req TransitionRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(purchase.PurchaseOrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// RecordReceipt records a receipt against an order: validates every entry,
// applies one purchase stock mutation per entry, increments the cumulative
// received quantities and persists the receipt, all in one transaction. The
// order auto-transitions to received when every line is fully received. Any
// failure rolls back the whole receipt.
func (s *PurchaseOrderService) RecordReceipt(ctx context.Context, tenantID, actorID, orderID uuid.UUID, req RecordReceiptRequest) (*ReceiptResponse, error) {
	receiptDate := time.Now()
	if req.ReceiptDate != nil {
		receiptDate = *req.ReceiptDate
	}

	inputs := make([]purchase.ReceiptEntryInput, len(req.Entries))
	for idx, entry := range req.Entries {
		inputs[idx] = purchase.ReceiptEntryInput{
			LineID:           entry.LineID,
			QuantityReceived: entry.QuantityReceived,
			ActualPrice:      entry.ActualPrice,
		}
	}

	var (
		order     *purchase.PurchaseOrder
		receipt   *purchase.Receipt
		movements []*inventory.StockMovement
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}

		existing, err := repos.ReceiptRepo().CountByNumberPrefix(ctx, tenantID, numberPrefix(receiptNumberKind, receiptDate))
		if err != nil {
			return err
		}

		receipt, err = purchase.NewReceipt(order, nextNumber(receiptNumberKind, receiptDate, existing), receiptDate, req.Notes, inputs, actorID)
		if err != nil {
			return err
		}
		if err := order.ApplyReceipt(receipt); err != nil {
			return err
		}

		reference := &inventory.Reference{ID: order.ID, Type: inventory.ReferenceTypePurchaseOrder}
		for _, entry := range receipt.Entries {
			updated, err := repos.VariantRepo().ApplyDelta(ctx, tenantID, entry.VariantID, entry.QuantityReceived, 0)
			if err != nil {
				return err
			}

			movement, err := inventory.NewStockMovement(
				tenantID, updated.ProductID, updated.ID, updated.SKU,
				inventory.MovementTypePurchase,
				entry.QuantityReceived, updated.Stock-entry.QuantityReceived, updated.Stock,
				actorID,
			)
			if err != nil {
				return err
			}
			movement.WithReference(reference).WithNotes(fmt.Sprintf("Receipt %s", receipt.ReceiptNumber))
			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return err
			}
			movements = append(movements, movement)
		}

		if err := repos.ReceiptRepo().Create(ctx, receipt); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	stockEvents := make([]shared.DomainEvent, len(movements))
	for idx, movement := range movements {
		stockEvents[idx] = inventory.NewStockChangedEvent(movement)
	}
	s.publishDomainEvents(ctx, order, stockEvents...)

	response := ToReceiptResponse(receipt)
	return &response, nil
}
