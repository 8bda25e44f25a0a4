package handler

import (
	"context"

	accessapp "github.com/erp/pos-gateway/internal/application/access"
	"github.com/erp/pos-gateway/internal/application/mutation"
	"github.com/erp/pos-gateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles gateway policy endpoints
type SettingsHandler struct {
	BaseHandler
	settings  *accessapp.SettingsService
	reconcile *accessapp.ReconcileService
	mutations *mutation.Controller
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *accessapp.SettingsService, reconcile *accessapp.ReconcileService, mutations *mutation.Controller) *SettingsHandler {
	return &SettingsHandler{
		settings:  settings,
		reconcile: reconcile,
		mutations: mutations,
	}
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
		settings.POST("/reconcile", h.Reconcile)
	}
}

// UpdateSettingsRequest patches the access policy. Absent fields keep
// their stored value; list fields replace the whole list when present.
type UpdateSettingsRequest struct {
	RequestID             string   `json:"request_id"`
	APIEnabled            *bool    `json:"api_enabled"`
	AllowDiscovery        *bool    `json:"allow_discovery"`
	AllowedRoles          []string `json:"allowed_roles"`
	AllowedUsers          []string `json:"allowed_users"`
	DefaultSyncPageSize   *int     `json:"default_sync_page_size"`
	BootstrapInvoiceDays  *int     `json:"bootstrap_invoice_days"`
	RecentPaidInvoiceDays *int     `json:"recent_paid_invoice_days"`
	EnableInventoryAlerts *bool    `json:"enable_inventory_alerts"`
	AlertDefaultLimit     *int     `json:"alert_default_limit"`
	AlertCriticalRatio    *float64 `json:"alert_critical_ratio"`
	AlertLowRatio         *float64 `json:"alert_low_ratio"`
}

// Get returns the stored access policy.
func (h *SettingsHandler) Get(c *gin.Context) {
	policy, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, policy)
}

// Update patches the access policy and invalidates the policy cache.
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}
	var req UpdateSettingsRequest
	body, err = bindMutationBody(body, &req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	outcome, err := h.mutations.Execute(c.Request.Context(), mutation.Request{
		UserID:          userID,
		Endpoint:        "settings.update",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.settings.Update(ctx, accessapp.UpdatePolicyRequest{
			APIEnabled:            req.APIEnabled,
			AllowDiscovery:        req.AllowDiscovery,
			AllowedRoles:          req.AllowedRoles,
			AllowedUsers:          req.AllowedUsers,
			DefaultSyncPageSize:   req.DefaultSyncPageSize,
			BootstrapInvoiceDays:  req.BootstrapInvoiceDays,
			RecentPaidInvoiceDays: req.RecentPaidInvoiceDays,
			EnableInventoryAlerts: req.EnableInventoryAlerts,
			AlertDefaultLimit:     req.AlertDefaultLimit,
			AlertCriticalRatio:    req.AlertCriticalRatio,
			AlertLowRatio:         req.AlertLowRatio,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MutationResult{
		RequestID: outcome.RequestID,
		Replayed:  outcome.Replayed,
		Result:    outcome.Snapshot,
	})
}

// Reconcile runs the permission reconciliation pass and returns its
// report, including per-intent errors for partially failed runs.
func (h *SettingsHandler) Reconcile(c *gin.Context) {
	report, err := h.reconcile.Reconcile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
