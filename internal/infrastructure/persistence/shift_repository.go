package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShiftRepository implements pos.ShiftRepository using GORM
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GormShiftRepository
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

// FindByID finds a shift by its ID
func (r *GormShiftRepository) FindByID(ctx context.Context, id string) (*pos.Shift, error) {
	var model models.ShiftModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpen returns the user's open shift for the profile. The query is
// scoped to the user: an open shift held by someone else never surfaces.
func (r *GormShiftRepository) FindOpen(ctx context.Context, userID, profile string) (*pos.Shift, error) {
	var model models.ShiftModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND profile = ? AND status = ?", userID, profile, string(pos.ShiftOpen)).
		Order("opened_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAnyOpen returns the user's open shift for any profile.
func (r *GormShiftRepository) FindAnyOpen(ctx context.Context, userID string) (*pos.Shift, error) {
	var model models.ShiftModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(pos.ShiftOpen)).
		Order("opened_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the shift.
func (r *GormShiftRepository) Save(ctx context.Context, shift *pos.Shift) error {
	var model models.ShiftModel
	model.FromDomain(shift)
	return r.db.WithContext(ctx).Save(&model).Error
}
