package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProfileRepository implements pos.ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByName finds a profile by its name
func (r *GormProfileRepository) FindByName(ctx context.Context, name string) (*pos.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAccessible lists enabled profiles the user is assigned to. A user
// with no assignment at all sees every enabled profile.
func (r *GormProfileRepository) FindAccessible(ctx context.Context, userID string) ([]pos.Profile, error) {
	var assignedNames []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileUserModel{}).
		Where("user_id = ?", userID).
		Pluck("profile", &assignedNames).Error; err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Where("disabled = ?", false).Order("name ASC")
	if len(assignedNames) > 0 {
		query = query.Where("name IN ?", assignedNames)
	}

	var profileModels []models.ProfileModel
	if err := query.Find(&profileModels).Error; err != nil {
		return nil, err
	}

	profiles := make([]pos.Profile, len(profileModels))
	for i, model := range profileModels {
		profiles[i] = *model.ToDomain()
	}
	return profiles, nil
}

// FindDefault returns the user's default profile assignment.
func (r *GormProfileRepository) FindDefault(ctx context.Context, userID string) (*pos.Profile, error) {
	var assignment models.ProfileUserModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND \"default\" = ?", userID, true).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByName(ctx, assignment.Profile)
}

// FindFirstEnabled returns the first enabled profile by name.
func (r *GormProfileRepository) FindFirstEnabled(ctx context.Context) (*pos.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).
		Where("disabled = ?", false).
		Order("name ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
