package access

import (
	"context"
	"strings"
	"time"
)

// Default policy values applied when the stored configuration is empty.
const (
	DefaultSyncPageSize         = 50
	MaxSyncPageSize             = 500
	DefaultBootstrapInvoiceDays = 90
	DefaultRecentPaidDays       = 7
	DefaultAlertLimit           = 20
	DefaultAlertCriticalRatio   = 0.35
	DefaultAlertLowRatio        = 1.0
	DefaultIdempotencyRetention = 48 * time.Hour
)

// DefaultAllowedRoles is the fallback allowlist used when neither the
// structured role set nor the legacy CSV is configured.
var DefaultAllowedRoles = []string{"System Manager", "POS", "POS User"}

// AccessPolicy is the declarative configuration driving the guard and the
// sync engine. One versioned row per deployment; mutated only through the
// administrative settings path.
type AccessPolicy struct {
	Version               int64         `json:"version"`
	APIEnabled            bool          `json:"api_enabled"`
	AllowDiscovery        bool          `json:"allow_discovery"`
	AllowedRoles          []string      `json:"allowed_roles"`
	AllowedUsers          []string      `json:"allowed_users"`
	LegacyRoleCSV         string        `json:"-"`
	DefaultSyncPageSize   int           `json:"default_sync_page_size"`
	BootstrapInvoiceDays  int           `json:"bootstrap_invoice_days"`
	RecentPaidInvoiceDays int           `json:"recent_paid_invoice_days"`
	EnableInventoryAlerts bool          `json:"enable_inventory_alerts"`
	AlertDefaultLimit     int           `json:"alert_default_limit"`
	AlertCriticalRatio    float64       `json:"alert_critical_ratio"`
	AlertLowRatio         float64       `json:"alert_low_ratio"`
	IdempotencyRetention  time.Duration `json:"idempotency_retention"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// DefaultPolicy returns the policy used before any administrator has
// touched the settings.
func DefaultPolicy() AccessPolicy {
	return AccessPolicy{
		APIEnabled:            true,
		AllowDiscovery:        true,
		AllowedRoles:          append([]string(nil), DefaultAllowedRoles...),
		DefaultSyncPageSize:   DefaultSyncPageSize,
		BootstrapInvoiceDays:  DefaultBootstrapInvoiceDays,
		RecentPaidInvoiceDays: DefaultRecentPaidDays,
		EnableInventoryAlerts: true,
		AlertDefaultLimit:     DefaultAlertLimit,
		AlertCriticalRatio:    DefaultAlertCriticalRatio,
		AlertLowRatio:         DefaultAlertLowRatio,
		IdempotencyRetention:  DefaultIdempotencyRetention,
	}
}

// Normalize fills zero-valued tuning fields with defaults and clamps
// ranges so a partially-populated row never produces degenerate behavior.
func (p *AccessPolicy) Normalize() {
	if p.DefaultSyncPageSize <= 0 {
		p.DefaultSyncPageSize = DefaultSyncPageSize
	}
	if p.DefaultSyncPageSize > MaxSyncPageSize {
		p.DefaultSyncPageSize = MaxSyncPageSize
	}
	if p.BootstrapInvoiceDays <= 0 {
		p.BootstrapInvoiceDays = DefaultBootstrapInvoiceDays
	}
	if p.RecentPaidInvoiceDays <= 0 {
		p.RecentPaidInvoiceDays = DefaultRecentPaidDays
	}
	if p.AlertDefaultLimit <= 0 {
		p.AlertDefaultLimit = DefaultAlertLimit
	}
	if p.AlertCriticalRatio < 0 {
		p.AlertCriticalRatio = 0
	}
	if p.AlertCriticalRatio == 0 {
		p.AlertCriticalRatio = DefaultAlertCriticalRatio
	}
	if p.AlertLowRatio < p.AlertCriticalRatio {
		p.AlertLowRatio = DefaultAlertLowRatio
	}
	if p.IdempotencyRetention <= 0 {
		p.IdempotencyRetention = DefaultIdempotencyRetention
	}
}

// EffectiveAllowedRoles returns the structured role set when present,
// falling back to the legacy comma-separated value, then to the built-in
// defaults. Order is preserved, blanks are dropped.
func (p *AccessPolicy) EffectiveAllowedRoles() []string {
	if len(p.AllowedRoles) > 0 {
		return p.AllowedRoles
	}
	if csv := strings.TrimSpace(p.LegacyRoleCSV); csv != "" {
		parts := strings.Split(csv, ",")
		roles := make([]string, 0, len(parts))
		for _, part := range parts {
			if role := strings.TrimSpace(part); role != "" {
				roles = append(roles, role)
			}
		}
		if len(roles) > 0 {
			return roles
		}
	}
	return DefaultAllowedRoles
}

// Identity is the resolved caller of one request.
type Identity struct {
	UserID  string
	Company string
	Roles   []string
}

// IsGuest reports whether no identity was resolved.
func (id Identity) IsGuest() bool {
	return id.UserID == ""
}

// Decision is the guard's verdict for one request.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Authorizes decides whether the identity may call an authenticated
// endpoint under this policy. Discovery is handled separately since it is
// the only guest-allowed endpoint.
func (p *AccessPolicy) Authorizes(id Identity) Decision {
	if !p.APIEnabled {
		return Deny("mobile API is disabled")
	}
	if id.IsGuest() {
		return Deny("authentication required")
	}
	for _, user := range p.AllowedUsers {
		if user == id.UserID {
			return Allow()
		}
	}
	allowed := p.EffectiveAllowedRoles()
	for _, role := range id.Roles {
		for _, want := range allowed {
			if role == want {
				return Allow()
			}
		}
	}
	return Deny("none of the caller's roles are allowed to use the mobile API")
}

// AuthorizesDiscovery decides whether the unauthenticated discovery
// endpoint may be served.
func (p *AccessPolicy) AuthorizesDiscovery() Decision {
	if !p.APIEnabled {
		return Deny("mobile API is disabled")
	}
	if !p.AllowDiscovery {
		return Deny("site discovery is disabled")
	}
	return Allow()
}

// PolicyRepository reads and writes the access policy row.
type PolicyRepository interface {
	Get(ctx context.Context) (*AccessPolicy, error)
	Save(ctx context.Context, policy *AccessPolicy) error
}
