package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGrantRepository implements access.GrantRepository using GORM
type GormGrantRepository struct {
	db *gorm.DB
}

// NewGormGrantRepository creates a new GormGrantRepository
func NewGormGrantRepository(db *gorm.DB) *GormGrantRepository {
	return &GormGrantRepository{db: db}
}

// FindAll returns every permission grant, ordered for deterministic diffs.
func (r *GormGrantRepository) FindAll(ctx context.Context) ([]access.PermissionGrant, error) {
	var grantModels []models.PermissionGrantModel
	if err := r.db.WithContext(ctx).
		Order("doc_type ASC, role ASC, permission_level ASC, owner_only ASC").
		Find(&grantModels).Error; err != nil {
		return nil, err
	}

	grants := make([]access.PermissionGrant, len(grantModels))
	for i, model := range grantModels {
		grants[i] = model.ToDomain()
	}
	return grants, nil
}

// Upsert creates the grant or replaces its rights when the key exists.
func (r *GormGrantRepository) Upsert(ctx context.Context, grant access.PermissionGrant) error {
	var model models.PermissionGrantModel
	model.FromDomain(grant)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "doc_type"},
				{Name: "role"},
				{Name: "permission_level"},
				{Name: "owner_only"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"rights", "managed", "updated_at"}),
		}).
		Create(&model).Error
}

// Delete removes the grant with the given key. Deleting an absent key is
// not an error.
func (r *GormGrantRepository) Delete(ctx context.Context, key access.GrantKey) error {
	return r.db.WithContext(ctx).
		Where("doc_type = ? AND role = ? AND permission_level = ? AND owner_only = ?",
			key.DocumentType, key.Role, key.PermissionLevel, key.OwnerOnly).
		Delete(&models.PermissionGrantModel{}).Error
}

// RoleExists verifies the role is known to the identity subsystem.
func (r *GormGrantRepository) RoleExists(ctx context.Context, role string) (bool, error) {
	var model models.RoleModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !model.Disabled, nil
}
