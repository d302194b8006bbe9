package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/stocktrack/backend/internal/application/analytics"
)

// AnalyticsHandler handles read-only analytics endpoints
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *analyticsapp.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *analyticsapp.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

type analyticsQuery struct {
	Threshold int64 `form:"threshold" binding:"omitempty,min=0"`
	Days      int   `form:"days" binding:"omitempty,min=1,max=365"`
}

// InventoryValue returns the total retail value of on-hand stock
// GET /analytics/inventory-value
func (h *AnalyticsHandler) InventoryValue(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	value, err := h.analyticsService.InventoryValue(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, value)
}

// LowStock returns variants at or below the threshold, counting pending
// purchase order quantities toward availability
// GET /analytics/low-stock
func (h *AnalyticsHandler) LowStock(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var query analyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	items, err := h.analyticsService.LowStock(c.Request.Context(), tenantID, query.Threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// TopSellers returns products ranked by units sold over the trailing window
// GET /analytics/top-sellers
func (h *AnalyticsHandler) TopSellers(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var query analyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	window := time.Duration(query.Days) * 24 * time.Hour
	items, err := h.analyticsService.TopSellers(c.Request.Context(), tenantID, window)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// MovementSeries returns the per-day movement totals by type
// GET /analytics/movement-series
func (h *AnalyticsHandler) MovementSeries(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var query analyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	series, err := h.analyticsService.MovementSeries(c.Request.Context(), tenantID, query.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, series)
}

// Dashboard aggregates all analytics views in one response
// GET /analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var query analyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	dashboard, err := h.analyticsService.Dashboard(c.Request.Context(), tenantID, query.Threshold, query.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// RegisterRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/inventory-value", h.InventoryValue)
		analytics.GET("/low-stock", h.LowStock)
		analytics.GET("/top-sellers", h.TopSellers)
		analytics.GET("/movement-series", h.MovementSeries)
		analytics.GET("/dashboard", h.Dashboard)
	}
}
