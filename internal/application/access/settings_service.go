package access

import (
	"context"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidator drops the cached policy after an administrative write.
type CacheInvalidator interface {
	Invalidate()
}

// SettingsService is the administrative surface over the access policy.
type SettingsService struct {
	repo   access.PolicyRepository
	cache  CacheInvalidator
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo access.PolicyRepository, cache CacheInvalidator, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Get returns the stored policy, normalized.
func (s *SettingsService) Get(ctx context.Context) (*access.AccessPolicy, error) {
	return s.repo.Get(ctx)
}

// UpdatePolicyRequest carries the mutable policy fields. Nil pointers
// leave the stored value untouched so partial updates are safe.
type UpdatePolicyRequest struct {
	APIEnabled            *bool
	AllowDiscovery        *bool
	AllowedRoles          []string
	AllowedUsers          []string
	DefaultSyncPageSize   *int
	BootstrapInvoiceDays  *int
	RecentPaidInvoiceDays *int
	EnableInventoryAlerts *bool
	AlertDefaultLimit     *int
	AlertCriticalRatio    *float64
	AlertLowRatio         *float64
}

// Update applies the request to the stored policy and invalidates the
// policy cache so the guard sees the change on the next request.
func (s *SettingsService) Update(ctx context.Context, req UpdatePolicyRequest) (*access.AccessPolicy, error) {
	policy, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.APIEnabled != nil {
		policy.APIEnabled = *req.APIEnabled
	}
	if req.AllowDiscovery != nil {
		policy.AllowDiscovery = *req.AllowDiscovery
	}
	if req.AllowedRoles != nil {
		policy.AllowedRoles = trimmed(req.AllowedRoles)
	}
	if req.AllowedUsers != nil {
		policy.AllowedUsers = trimmed(req.AllowedUsers)
	}
	if req.DefaultSyncPageSize != nil {
		if *req.DefaultSyncPageSize <= 0 || *req.DefaultSyncPageSize > access.MaxSyncPageSize {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "sync page size out of range")
		}
		policy.DefaultSyncPageSize = *req.DefaultSyncPageSize
	}
	if req.BootstrapInvoiceDays != nil {
		if *req.BootstrapInvoiceDays <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "bootstrap invoice window must be positive")
		}
		policy.BootstrapInvoiceDays = *req.BootstrapInvoiceDays
	}
	if req.RecentPaidInvoiceDays != nil {
		if *req.RecentPaidInvoiceDays <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "recent paid invoice window must be positive")
		}
		policy.RecentPaidInvoiceDays = *req.RecentPaidInvoiceDays
	}
	if req.EnableInventoryAlerts != nil {
		policy.EnableInventoryAlerts = *req.EnableInventoryAlerts
	}
	if req.AlertDefaultLimit != nil {
		if *req.AlertDefaultLimit <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "alert limit must be positive")
		}
		policy.AlertDefaultLimit = *req.AlertDefaultLimit
	}
	if req.AlertCriticalRatio != nil {
		if *req.AlertCriticalRatio < 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "critical ratio cannot be negative")
		}
		policy.AlertCriticalRatio = *req.AlertCriticalRatio
	}
	if req.AlertLowRatio != nil {
		if *req.AlertLowRatio < policy.AlertCriticalRatio {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "low ratio cannot fall below the critical ratio")
		}
		policy.AlertLowRatio = *req.AlertLowRatio
	}

	policy.Normalize()
	if err := s.repo.Save(ctx, policy); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	s.logger.Info("access policy updated", zap.Int64("version", policy.Version))
	return policy, nil
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
