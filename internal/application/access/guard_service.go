package access

import (
	"context"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"go.uber.org/zap"
)

// PolicyProvider yields the current access policy. Satisfied by the
// cached policy store in production and by stubs in tests.
type PolicyProvider interface {
	Get(ctx context.Context) (*access.AccessPolicy, error)
}

// GuardService gates every mobile endpoint behind the access policy.
// The guard fails closed: when the policy cannot be loaded, nothing is
// served.
type GuardService struct {
	policies PolicyProvider
	logger   *zap.Logger
}

// NewGuardService creates a new GuardService
func NewGuardService(policies PolicyProvider, logger *zap.Logger) *GuardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardService{
		policies: policies,
		logger:   logger,
	}
}

// Authorize decides whether the identity may call an authenticated
// mobile endpoint. A policy load failure is reported as a dependency
// error, never as an allow.
func (s *GuardService) Authorize(ctx context.Context, id access.Identity) error {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		s.logger.Error("access policy unavailable, denying request", zap.Error(err))
		return shared.ErrDependencyUnavailable
	}

	decision := policy.Authorizes(id)
	if !decision.Allowed {
		s.logger.Debug("request denied",
			zap.String("user_id", id.UserID),
			zap.String("reason", decision.Reason))
		return shared.NewDomainError("ACCESS_DENIED", decision.Reason)
	}
	return nil
}

// AuthorizeDiscovery decides whether the unauthenticated discovery
// endpoint may be served.
func (s *GuardService) AuthorizeDiscovery(ctx context.Context) error {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		s.logger.Error("access policy unavailable, denying discovery", zap.Error(err))
		return shared.ErrDependencyUnavailable
	}

	decision := policy.AuthorizesDiscovery()
	if !decision.Allowed {
		return shared.NewDomainError("ACCESS_DENIED", decision.Reason)
	}
	return nil
}

// Policy returns the current normalized policy for callers that need
// tuning values (page sizes, bootstrap windows) rather than a verdict.
func (s *GuardService) Policy(ctx context.Context) (*access.AccessPolicy, error) {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}
	return policy, nil
}
