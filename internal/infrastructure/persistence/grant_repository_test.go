package persistence

import (
	"context"
	"testing"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormGrantRepository_UpsertAndFindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	grant := access.PermissionGrant{
		Key:     access.GrantKey{DocumentType: "sales_invoice", Role: "POS User"},
		Rights:  access.RightSet{access.RightRead: {}, access.RightCreate: {}},
		Managed: true,
	}
	require.NoError(t, repo.Upsert(ctx, grant))

	grants, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "sales_invoice", grants[0].Key.DocumentType)
	assert.True(t, grants[0].Rights.Has(access.RightCreate))
	assert.True(t, grants[0].Managed)
}

func TestGormGrantRepository_UpsertReplacesRights(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	key := access.GrantKey{DocumentType: "item", Role: "POS User"}
	require.NoError(t, repo.Upsert(ctx, access.PermissionGrant{
		Key:     key,
		Rights:  access.RightSet{access.RightRead: {}},
		Managed: true,
	}))
	require.NoError(t, repo.Upsert(ctx, access.PermissionGrant{
		Key:     key,
		Rights:  access.RightSet{access.RightRead: {}, access.RightWrite: {}},
		Managed: true,
	}))

	grants, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].Rights.Has(access.RightWrite))
}

func TestGormGrantRepository_KeyDimensionsAreDistinct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	base := access.GrantKey{DocumentType: "sales_invoice", Role: "POS User"}
	elevated := base
	elevated.PermissionLevel = 1

	require.NoError(t, repo.Upsert(ctx, access.PermissionGrant{Key: base, Rights: access.RightSet{access.RightRead: {}}}))
	require.NoError(t, repo.Upsert(ctx, access.PermissionGrant{Key: elevated, Rights: access.RightSet{access.RightRead: {}}}))

	grants, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, grants, 2)
}

func TestGormGrantRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	key := access.GrantKey{DocumentType: "item", Role: "POS User"}
	require.NoError(t, repo.Upsert(ctx, access.PermissionGrant{Key: key, Rights: access.RightSet{access.RightRead: {}}}))
	require.NoError(t, repo.Delete(ctx, key))

	grants, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, grants)

	// Deleting again is a no-op.
	require.NoError(t, repo.Delete(ctx, key))
}

func TestGormGrantRepository_RoleExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.RoleModel{Name: "POS User"}).Error)
	require.NoError(t, db.Create(&models.RoleModel{Name: "Retired Role", Disabled: true}).Error)

	exists, err := repo.RoleExists(ctx, "POS User")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.RoleExists(ctx, "Retired Role")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.RoleExists(ctx, "Unknown Role")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormRoleBindingStore_AssignIsAdditiveAndIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormRoleBindingStore(db)
	ctx := context.Background()

	require.NoError(t, store.Assign(ctx, "cashier@example.com", "POS User"))
	require.NoError(t, store.Assign(ctx, "cashier@example.com", "POS User"))
	require.NoError(t, store.Assign(ctx, "cashier@example.com", "POS"))

	roles, err := store.RolesOf(ctx, "cashier@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"POS", "POS User"}, roles)
}
