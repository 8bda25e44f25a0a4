package persistence

import (
	"context"

	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoleBindingStore implements access.RoleBindingStore using GORM
type GormRoleBindingStore struct {
	db *gorm.DB
}

// NewGormRoleBindingStore creates a new GormRoleBindingStore
func NewGormRoleBindingStore(db *gorm.DB) *GormRoleBindingStore {
	return &GormRoleBindingStore{db: db}
}

// RolesOf returns the roles currently bound to the user.
func (s *GormRoleBindingStore) RolesOf(ctx context.Context, userID string) ([]string, error) {
	var roles []string
	if err := s.db.WithContext(ctx).
		Model(&models.UserRoleModel{}).
		Where("user_id = ?", userID).
		Order("role ASC").
		Pluck("role", &roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Assign binds the role to the user. Assigning an already-held role is a
// no-op.
func (s *GormRoleBindingStore) Assign(ctx context.Context, userID, role string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "role"}},
			DoNothing: true,
		}).
		Create(&models.UserRoleModel{UserID: userID, Role: role}).Error
}
