package access

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPolicies struct {
	policy *access.AccessPolicy
	err    error
}

func (s *stubPolicies) Get(context.Context) (*access.AccessPolicy, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := *s.policy
	return &p, nil
}

func enabledPolicy() *access.AccessPolicy {
	p := access.DefaultPolicy()
	return &p
}

func TestGuardService_AuthorizeByRole(t *testing.T) {
	guard := NewGuardService(&stubPolicies{policy: enabledPolicy()}, nil)

	err := guard.Authorize(context.Background(), access.Identity{
		UserID: "cashier@example.com",
		Roles:  []string{"Accounts User", "POS User"},
	})
	assert.NoError(t, err)
}

func TestGuardService_AuthorizeByUserAllowlist(t *testing.T) {
	policy := enabledPolicy()
	policy.AllowedRoles = []string{"POS"}
	policy.AllowedUsers = []string{"driver@example.com"}
	guard := NewGuardService(&stubPolicies{policy: policy}, nil)

	// Listed user passes even without any allowed role.
	err := guard.Authorize(context.Background(), access.Identity{
		UserID: "driver@example.com",
		Roles:  []string{"Accounts User"},
	})
	assert.NoError(t, err)
}

func TestGuardService_DeniesGuestAndWrongRoles(t *testing.T) {
	guard := NewGuardService(&stubPolicies{policy: enabledPolicy()}, nil)

	err := guard.Authorize(context.Background(), access.Identity{})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCESS_DENIED", domainErr.Code)

	err = guard.Authorize(context.Background(), access.Identity{
		UserID: "intruder@example.com",
		Roles:  []string{"Accounts User"},
	})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCESS_DENIED", domainErr.Code)
}

func TestGuardService_DisabledAPIDeniesEveryone(t *testing.T) {
	policy := enabledPolicy()
	policy.APIEnabled = false
	guard := NewGuardService(&stubPolicies{policy: policy}, nil)

	err := guard.Authorize(context.Background(), access.Identity{
		UserID: "admin@example.com",
		Roles:  []string{"System Manager"},
	})
	assert.Error(t, err)

	err = guard.AuthorizeDiscovery(context.Background())
	assert.Error(t, err)
}

func TestGuardService_FailsClosedWhenPolicyUnavailable(t *testing.T) {
	guard := NewGuardService(&stubPolicies{err: errors.New("connection refused")}, nil)

	err := guard.Authorize(context.Background(), access.Identity{
		UserID: "cashier@example.com",
		Roles:  []string{"POS User"},
	})
	assert.ErrorIs(t, err, shared.ErrDependencyUnavailable)

	err = guard.AuthorizeDiscovery(context.Background())
	assert.ErrorIs(t, err, shared.ErrDependencyUnavailable)
}

func TestGuardService_Discovery(t *testing.T) {
	guard := NewGuardService(&stubPolicies{policy: enabledPolicy()}, nil)
	assert.NoError(t, guard.AuthorizeDiscovery(context.Background()))

	policy := enabledPolicy()
	policy.AllowDiscovery = false
	guard = NewGuardService(&stubPolicies{policy: policy}, nil)
	assert.Error(t, guard.AuthorizeDiscovery(context.Background()))
}
