package access

import "sort"

// ChangeKind classifies one entry in a reconciliation changeset.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
)

// GrantChange is one planned write against the grant store.
type GrantChange struct {
	Kind  ChangeKind
	Grant PermissionGrant
}

// Changeset is the typed output of the grant diff. It is a plan, not an
// applied state; applying it is the reconciliation service's job.
type Changeset struct {
	Changes []GrantChange
}

// Len returns the number of planned writes.
func (c *Changeset) Len() int { return len(c.Changes) }

// DiffGrants computes the three-way diff between declared intents and
// materialized grants.
//
// Rules:
//   - an intent with no matching grant plans a create
//   - an intent whose rights differ from the matching grant plans an update
//   - an intent marked Remove plans a removal when a grant exists
//   - a grant with no matching intent is left alone, managed or not;
//     administrator-managed manual grants must survive reconciliation
//
// Rights are normalized (write implies read) before comparison so that a
// re-run with unchanged intents plans zero writes.
func DiffGrants(intents []PermissionIntent, grants []PermissionGrant) Changeset {
	existing := make(map[GrantKey]PermissionGrant, len(grants))
	for _, g := range grants {
		existing[g.Key] = g
	}

	var cs Changeset
	for _, intent := range intents {
		current, found := existing[intent.Key]

		if intent.Remove {
			if found {
				cs.Changes = append(cs.Changes, GrantChange{Kind: ChangeRemove, Grant: current})
			}
			continue
		}

		want := intent.Rights.Normalized()
		if !found {
			cs.Changes = append(cs.Changes, GrantChange{
				Kind:  ChangeCreate,
				Grant: PermissionGrant{Key: intent.Key, Rights: want, Managed: true},
			})
			continue
		}
		if !current.Rights.Equal(want) {
			cs.Changes = append(cs.Changes, GrantChange{
				Kind:  ChangeUpdate,
				Grant: PermissionGrant{Key: intent.Key, Rights: want, Managed: current.Managed},
			})
		}
	}
	return cs
}

// BindingChange is one planned role assignment.
type BindingChange struct {
	UserID string
	Role   string
}

// DiffBindings plans the role assignments needed to satisfy the declared
// bindings. Assignment is additive-only: roles the user already holds that
// are absent from bindings are never revoked here.
func DiffBindings(bindings []RoleBinding, currentRoles map[string][]string) []BindingChange {
	var changes []BindingChange
	for _, b := range bindings {
		held := false
		for _, role := range currentRoles[b.UserID] {
			if role == b.Role {
				held = true
				break
			}
		}
		if !held {
			changes = append(changes, BindingChange{UserID: b.UserID, Role: b.Role})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].UserID != changes[j].UserID {
			return changes[i].UserID < changes[j].UserID
		}
		return changes[i].Role < changes[j].Role
	})
	return changes
}

// FallbackReadDocuments are the document types the POS service role keeps
// read access to even when no intents are configured, so that disabling
// reconciliation cannot lock the service account out entirely.
var FallbackReadDocuments = []string{"item", "item_price", "bin"}

// FallbackIntents returns the minimal read-only intent set for the mobile
// POS service role.
func FallbackIntents(serviceRole string) []PermissionIntent {
	intents := make([]PermissionIntent, 0, len(FallbackReadDocuments))
	for _, doc := range FallbackReadDocuments {
		intents = append(intents, PermissionIntent{
			Key:    GrantKey{DocumentType: doc, Role: serviceRole},
			Rights: NewRightSet(RightRead, RightSelect, RightReport),
		})
	}
	return intents
}

// IntentError records a single intent that failed to apply. One bad intent
// never aborts reconciliation of the rest.
type IntentError struct {
	Key     GrantKey `json:"key"`
	Message string   `json:"message"`
}

// ReconciliationReport summarizes one reconciliation run.
type ReconciliationReport struct {
	GrantsCreated int             `json:"grants_created"`
	GrantsUpdated int             `json:"grants_updated"`
	GrantsRemoved int             `json:"grants_removed"`
	RolesAssigned int             `json:"roles_assigned"`
	Errors        []IntentError   `json:"errors,omitempty"`
	AppliedAt     string          `json:"applied_at"`
}

// Changed returns the total number of writes the run performed. A second
// run with unchanged intents must report zero.
func (r *ReconciliationReport) Changed() int {
	return r.GrantsCreated + r.GrantsUpdated + r.GrantsRemoved + r.RolesAssigned
}
