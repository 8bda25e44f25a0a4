package handler

import (
	"errors"

	accessapp "github.com/erp/pos-gateway/internal/application/access"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
)

// DiscoveryHandler serves the unauthenticated manifest a mobile client
// reads before it can log in. It is the only guest-reachable endpoint.
type DiscoveryHandler struct {
	BaseHandler
	guard    *accessapp.GuardService
	profiles pos.ProfileRepository
	cfg      config.DiscoveryConfig
}

// NewDiscoveryHandler creates a new DiscoveryHandler
func NewDiscoveryHandler(guard *accessapp.GuardService, profiles pos.ProfileRepository, cfg config.DiscoveryConfig) *DiscoveryHandler {
	return &DiscoveryHandler{
		guard:    guard,
		profiles: profiles,
		cfg:      cfg,
	}
}

// RegisterRoutes registers the discovery route
func (h *DiscoveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/discovery", h.Discover)
}

// DiscoveryManifest is the connection bootstrap a client needs to start
// the OAuth flow. The client secret is omitted unless explicitly enabled
// in configuration.
type DiscoveryManifest struct {
	BaseURL           string `json:"base_url"`
	APIVersion        string `json:"api_version"`
	OAuthClientID     string `json:"oauth_client_id"`
	OAuthRedirectURI  string `json:"oauth_redirect_uri"`
	OAuthClientSecret string `json:"oauth_client_secret,omitempty"`
	DefaultProfile    string `json:"default_profile,omitempty"`
	Company           string `json:"company,omitempty"`
	Currency          string `json:"currency,omitempty"`
}

// Discover returns the connection manifest when discovery is enabled.
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	if err := h.guard.AuthorizeDiscovery(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	manifest := DiscoveryManifest{
		BaseURL:          h.cfg.BaseURL,
		APIVersion:       h.cfg.APIVersion,
		OAuthClientID:    h.cfg.OAuthClientID,
		OAuthRedirectURI: h.cfg.OAuthRedirectURI,
	}
	if h.cfg.AllowClientSecretResponse {
		manifest.OAuthClientSecret = h.cfg.OAuthClientSecret
	}

	profile, err := h.profiles.FindFirstEnabled(c.Request.Context())
	switch {
	case err == nil:
		manifest.DefaultProfile = profile.Name
		manifest.Company = profile.Company
		manifest.Currency = profile.Currency
	case errors.Is(err, shared.ErrNotFound):
		// No enabled profile yet, the manifest still lets the client connect.
	default:
		h.HandleError(c, err)
		return
	}

	h.Success(c, manifest)
}
