package handler

import (
	invapp "github.com/erp/pos-gateway/internal/application/inventory"
	"github.com/erp/pos-gateway/internal/domain/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles stock alert endpoints
type InventoryHandler struct {
	BaseHandler
	alerts *invapp.AlertService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(alerts *invapp.AlertService) *InventoryHandler {
	return &InventoryHandler{alerts: alerts}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.GET("/alerts", h.Alerts)
		inv.GET("/alert-rules", h.ListRules)
		inv.POST("/alert-rules", h.SaveRule)
		inv.DELETE("/alert-rules/:id", h.DeleteRule)
	}
}

// SaveAlertRuleRequest creates or replaces an alert rule. Empty
// warehouse or item_group act as wildcards.
type SaveAlertRuleRequest struct {
	ID            string  `json:"id"`
	Warehouse     string  `json:"warehouse"`
	ItemGroup     string  `json:"item_group"`
	CriticalRatio float64 `json:"critical_ratio"`
	LowRatio      float64 `json:"low_ratio"`
	Priority      uint    `json:"priority"`
	Limit         uint    `json:"limit"`
}

// Alerts evaluates the alert rules against current stock in a warehouse.
func (h *InventoryHandler) Alerts(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		h.BadRequest(c, "limit must be an integer")
		return
	}

	report, err := h.alerts.Evaluate(c.Request.Context(), invapp.EvaluateRequest{
		Company:   c.Query("company"),
		Warehouse: c.Query("warehouse"),
		Limit:     limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ListRules returns all configured alert rules.
func (h *InventoryHandler) ListRules(c *gin.Context) {
	rules, err := h.alerts.ListRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rules)
}

// SaveRule creates or updates one alert rule.
func (h *InventoryHandler) SaveRule(c *gin.Context) {
	var req SaveAlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.alerts.SaveRule(c.Request.Context(), &inventory.AlertRule{
		ID:            req.ID,
		Warehouse:     req.Warehouse,
		ItemGroup:     req.ItemGroup,
		CriticalRatio: req.CriticalRatio,
		LowRatio:      req.LowRatio,
		Priority:      req.Priority,
		Limit:         req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// DeleteRule removes an alert rule by ID.
func (h *InventoryHandler) DeleteRule(c *gin.Context) {
	if err := h.alerts.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
