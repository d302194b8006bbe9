package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stocktrack/backend/internal/application/inventory"
	"github.com/stocktrack/backend/internal/domain/shared"
)

// InventoryHandler handles variant and stock mutation endpoints
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// CreateVariant creates a variant under a product
// POST /variants
func (h *InventoryHandler) CreateVariant(c *gin.Context) {
	tenantID, actorID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req inventoryapp.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	variant, err := h.stockService.CreateVariant(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variant)
}

// GetVariant retrieves a variant by ID
// GET /variants/:id
func (h *InventoryHandler) GetVariant(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	variantID, ok := h.pathID(c)
	if !ok {
		return
	}

	variant, err := h.stockService.GetVariant(c.Request.Context(), tenantID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variant)
}

// GetVariantBySKU retrieves a variant by its SKU, case insensitive
// GET /variants/sku/:sku
func (h *InventoryHandler) GetVariantBySKU(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	variant, err := h.stockService.GetVariantBySKU(c.Request.Context(), tenantID, c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variant)
}

// ListVariants lists variants with filtering and pagination
// GET /variants
func (h *InventoryHandler) ListVariants(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var filter inventoryapp.VariantListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	variants, total, err := h.stockService.ListVariants(c.Request.Context(), tenantID, filter)
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
	h.SuccessWithMeta(c, variants, total, page, pageSize)
}

// GetVariantMovements returns the variant's ledger, newest first
// GET /variants/:id/movements
func (h *InventoryHandler) GetVariantMovements(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	variantID, ok := h.pathID(c)
	if !ok {
		return
	}

	var paging struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&paging); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if paging.Page > 0 {
		filter.Page = paging.Page
	}
	if paging.PageSize > 0 {
		filter.PageSize = paging.PageSize
	}

	movements, err := h.stockService.GetVariantMovements(c.Request.Context(), tenantID, variantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Mutate applies one stock mutation
// POST /stock/mutations
func (h *InventoryHandler) Mutate(c *gin.Context) {
	tenantID, actorID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req inventoryapp.MutateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.stockService.Mutate(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reserve earmarks available stock
// POST /stock/reservations
func (h *InventoryHandler) Reserve(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req inventoryapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.stockService.Reserve(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Release returns reserved stock to the available pool
// POST /stock/releases
func (h *InventoryHandler) Release(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req inventoryapp.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.stockService.Release(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Fulfill consumes reserved stock and writes a sale movement
// POST /stock/fulfillments
func (h *InventoryHandler) Fulfill(c *gin.Context) {
	tenantID, actorID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req inventoryapp.FulfillStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.stockService.Fulfill(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListMovements lists ledger entries with filtering
// GET /movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), tenantID, filter)
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
	h.SuccessWithMeta(c, movements, total, page, pageSize)
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	variants := rg.Group("/variants")
	{
		variants.POST("", h.CreateVariant)
		variants.GET("", h.ListVariants)
		variants.GET("/sku/:sku", h.GetVariantBySKU)
		variants.GET("/:id", h.GetVariant)
		variants.GET("/:id/movements", h.GetVariantMovements)
	}

	stock := rg.Group("/stock")
	{
		stock.POST("/mutations", h.Mutate)
		stock.POST("/reservations", h.Reserve)
		stock.POST("/releases", h.Release)
		stock.POST("/fulfillments", h.Fulfill)
	}

	rg.GET("/movements", h.ListMovements)
}
