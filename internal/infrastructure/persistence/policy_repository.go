package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// policyRowID pins the access policy to a single row.
const policyRowID = 1

// GormPolicyRepository implements access.PolicyRepository using GORM
type GormPolicyRepository struct {
	db *gorm.DB
}

// NewGormPolicyRepository creates a new GormPolicyRepository
func NewGormPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

// Get loads the policy row. A missing row yields the built-in defaults so
// a fresh deployment works before any administrator touches settings.
func (r *GormPolicyRepository) Get(ctx context.Context) (*access.AccessPolicy, error) {
	var model models.AccessPolicyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", policyRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			policy := access.DefaultPolicy()
			return &policy, nil
		}
		return nil, err
	}
	policy := model.ToDomain()
	policy.Normalize()
	return policy, nil
}

// Save upserts the policy row and bumps its version.
func (r *GormPolicyRepository) Save(ctx context.Context, policy *access.AccessPolicy) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.AccessPolicyModel
		err := tx.First(&model, "id = ?", policyRowID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model.ID = policyRowID
			model.FromDomain(policy)
			model.Version = 1
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			nextVersion := model.Version + 1
			model.FromDomain(policy)
			model.Version = nextVersion
			if err := tx.Save(&model).Error; err != nil {
				return err
			}
		}
		policy.Version = model.Version
		policy.UpdatedAt = model.UpdatedAt
		return nil
	})
}
