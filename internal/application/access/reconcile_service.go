package access

import (
	"context"
	"time"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"go.uber.org/zap"
)

// AssignableRoleOrder is the preference order used when an allowed user
// holds none of the allowed API roles. "System Manager" is never
// assigned automatically.
var AssignableRoleOrder = []string{"POS User", "POS"}

// ReconcileService converges the materialized permission grants and role
// bindings onto the declared access policy. Runs are idempotent: a second
// run with unchanged policy reports zero changes.
type ReconcileService struct {
	policies PolicyProvider
	grants   access.GrantRepository
	bindings access.RoleBindingStore
	logger   *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(policies PolicyProvider, grants access.GrantRepository, bindings access.RoleBindingStore, logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{
		policies: policies,
		grants:   grants,
		bindings: bindings,
		logger:   logger,
	}
}

// Reconcile runs one full reconciliation pass. One bad role or one failed
// write never aborts the rest of the run; failures are collected on the
// report instead.
func (s *ReconcileService) Reconcile(ctx context.Context) (*access.ReconciliationReport, error) {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}

	report := &access.ReconciliationReport{}

	intents := s.buildIntents(ctx, policy, report)
	if err := s.applyGrants(ctx, intents, report); err != nil {
		return nil, err
	}
	s.applyBindings(ctx, policy, report)

	report.AppliedAt = time.Now().UTC().Format(time.RFC3339)
	s.logger.Info("access reconciliation finished",
		zap.Int("grants_created", report.GrantsCreated),
		zap.Int("grants_updated", report.GrantsUpdated),
		zap.Int("grants_removed", report.GrantsRemoved),
		zap.Int("roles_assigned", report.RolesAssigned),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

// buildIntents expands the policy into the read-only intent set: every
// allowed role except System Manager gets read, select and report rights
// on the catalog document types. Roles unknown to the identity subsystem
// are skipped and recorded so a single stale role name cannot block the
// rest of the run.
func (s *ReconcileService) buildIntents(ctx context.Context, policy *access.AccessPolicy, report *access.ReconciliationReport) []access.PermissionIntent {
	var intents []access.PermissionIntent
	for _, role := range policy.EffectiveAllowedRoles() {
		// System Manager already holds everything.
		if role == "System Manager" {
			continue
		}
		exists, err := s.grants.RoleExists(ctx, role)
		if err != nil {
			report.Errors = append(report.Errors, access.IntentError{
				Key:     access.GrantKey{Role: role},
				Message: "role lookup failed: " + err.Error(),
			})
			continue
		}
		if !exists {
			report.Errors = append(report.Errors, access.IntentError{
				Key:     access.GrantKey{Role: role},
				Message: "role does not exist",
			})
			continue
		}
		intents = append(intents, access.FallbackIntents(role)...)
	}

	// The report right cannot be honored on owner-scoped grants.
	for i := range intents {
		if intents[i].Key.OwnerOnly {
			delete(intents[i].Rights, access.RightReport)
		}
	}
	return intents
}

func (s *ReconcileService) applyGrants(ctx context.Context, intents []access.PermissionIntent, report *access.ReconciliationReport) error {
	current, err := s.grants.FindAll(ctx)
	if err != nil {
		return shared.ErrDependencyUnavailable
	}

	cs := access.DiffGrants(intents, current)
	for _, change := range cs.Changes {
		var applyErr error
		switch change.Kind {
		case access.ChangeRemove:
			applyErr = s.grants.Delete(ctx, change.Grant.Key)
		default:
			applyErr = s.grants.Upsert(ctx, change.Grant)
		}
		if applyErr != nil {
			report.Errors = append(report.Errors, access.IntentError{
				Key:     change.Grant.Key,
				Message: applyErr.Error(),
			})
			continue
		}
		switch change.Kind {
		case access.ChangeCreate:
			report.GrantsCreated++
		case access.ChangeUpdate:
			report.GrantsUpdated++
		case access.ChangeRemove:
			report.GrantsRemoved++
		}
	}
	return nil
}

// applyBindings makes sure every explicitly allowed user holds at least
// one allowed API role. Assignment is additive-only and built-in accounts
// are never touched.
func (s *ReconcileService) applyBindings(ctx context.Context, policy *access.AccessPolicy, report *access.ReconciliationReport) {
	allowed := policy.EffectiveAllowedRoles()
	assignable := preferredAssignableRole(allowed)
	if assignable == "" {
		return
	}

	var bindings []access.RoleBinding
	current := make(map[string][]string)
	for _, user := range policy.AllowedUsers {
		if user == "" || user == "Guest" || user == "Administrator" {
			continue
		}
		roles, err := s.bindings.RolesOf(ctx, user)
		if err != nil {
			report.Errors = append(report.Errors, access.IntentError{
				Key:     access.GrantKey{Role: assignable},
				Message: "role lookup failed for " + user + ": " + err.Error(),
			})
			continue
		}
		if holdsAny(roles, allowed) {
			continue
		}
		current[user] = roles
		bindings = append(bindings, access.RoleBinding{UserID: user, Role: assignable})
	}

	for _, change := range access.DiffBindings(bindings, current) {
		if err := s.bindings.Assign(ctx, change.UserID, change.Role); err != nil {
			report.Errors = append(report.Errors, access.IntentError{
				Key:     access.GrantKey{Role: change.Role},
				Message: "role assignment failed for " + change.UserID + ": " + err.Error(),
			})
			continue
		}
		report.RolesAssigned++
	}
}

// preferredAssignableRole picks the role handed to allowed users lacking
// any API role: the preference order first, then any allowed role other
// than System Manager.
func preferredAssignableRole(allowed []string) string {
	for _, want := range AssignableRoleOrder {
		for _, role := range allowed {
			if role == want {
				return role
			}
		}
	}
	for _, role := range allowed {
		if role != "System Manager" {
			return role
		}
	}
	return ""
}

func holdsAny(roles, wanted []string) bool {
	for _, role := range roles {
		for _, want := range wanted {
			if role == want {
				return true
			}
		}
	}
	return false
}
