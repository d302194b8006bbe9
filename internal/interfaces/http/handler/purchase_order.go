package handler

import (
	"github.com/gin-gonic/gin"
	purchaseapp "github.com/stocktrack/backend/internal/application/purchase"
)

// PurchaseOrderHandler handles purchase order workflow endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *purchaseapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *purchaseapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// CreateOrder creates a draft purchase order
// POST /purchase-orders
func (h *PurchaseOrderHandler) CreateOrder(c *gin.Context) {
	tenantID, actorID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req purchaseapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetOrder retrieves an order with its receipts and price variance
// GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetOrder(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListOrders lists purchase orders with filtering and pagination
// GET /purchase-orders
func (h *PurchaseOrderHandler) ListOrders(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var filter purchaseapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// UpdateOrder updates a draft order, replacing its lines
// PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) UpdateOrder(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req purchaseapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// DeleteOrder deletes a draft order
// DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) DeleteOrder(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Transition moves an order through its status workflow
// POST /purchase-orders/:id/transition
func (h *PurchaseOrderHandler) Transition(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req purchaseapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.Transition(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RecordReceipt records a delivery against a sent order and applies the
// received quantities to stock
// POST /purchase-orders/:id/receipts
func (h *PurchaseOrderHandler) RecordReceipt(c *gin.Context) {
	tenantID, actorID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req purchaseapp.RecordReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	receipt, err := h.orderService.RecordReceipt(c.Request.Context(), tenantID, actorID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// RegisterRoutes registers all purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/transition", h.Transition)
		orders.POST("/:id/receipts", h.RecordReceipt)
	}
}
