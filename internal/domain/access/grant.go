package access

import (
	"context"
	"fmt"
	"time"
)

// GrantKey uniquely identifies a permission grant. At most one grant
// exists per key.
type GrantKey struct {
	DocumentType    string
	Role            string
	PermissionLevel uint
	OwnerOnly       bool
}

// String renders the key for reports and logs.
func (k GrantKey) String() string {
	return fmt.Sprintf("%s/%s/level=%d/owner=%t", k.DocumentType, k.Role, k.PermissionLevel, k.OwnerOnly)
}

// PermissionGrant is a materialized permission record on the underlying
// record store. Managed marks grants created by the reconciliation engine;
// grants an administrator created by hand carry Managed=false and are
// never touched unless an intent explicitly removes them.
type PermissionGrant struct {
	Key       GrantKey
	Rights    RightSet
	Managed   bool
	UpdatedAt time.Time
}

// PermissionIntent is a declared, not-yet-materialized permission
// requirement from the policy store. Remove marks the grant for deletion;
// reconciliation otherwise never destroys existing grants.
type PermissionIntent struct {
	Key    GrantKey
	Rights RightSet
	Remove bool
}

// RoleBinding declares that a user must hold a role. Bindings are
// additive-only: reconciliation assigns missing roles and never revokes
// roles absent from the binding set.
type RoleBinding struct {
	UserID string
	Role   string
}

// GrantRepository persists permission grants keyed by GrantKey.
type GrantRepository interface {
	FindAll(ctx context.Context) ([]PermissionGrant, error)
	Upsert(ctx context.Context, grant PermissionGrant) error
	Delete(ctx context.Context, key GrantKey) error
	// RoleExists verifies the role is known to the identity subsystem.
	RoleExists(ctx context.Context, role string) (bool, error)
}

// RoleBindingStore materializes role bindings onto the identity subsystem.
type RoleBindingStore interface {
	RolesOf(ctx context.Context, userID string) ([]string, error)
	Assign(ctx context.Context, userID, role string) error
}
