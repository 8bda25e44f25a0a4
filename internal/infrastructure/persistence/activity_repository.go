package persistence

import (
	"context"

	"github.com/erp/pos-gateway/internal/domain/activity"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityRepository implements activity.Repository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Record persists one activity entry.
func (r *GormActivityRepository) Record(ctx context.Context, entry *activity.Entry) error {
	var model models.ActivityEntryModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Find pages activity entries, newest first.
func (r *GormActivityRepository) Find(ctx context.Context, f activity.Filter) ([]activity.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityEntryModel{})

	if f.Company != "" {
		query = query.Where("company = ?", f.Company)
	}
	if f.Profile != "" {
		query = query.Where("profile = ?", f.Profile)
	}
	if f.Warehouse != "" {
		query = query.Where("warehouse = ?", f.Warehouse)
	}
	if f.Territory != "" {
		query = query.Where("territory = ?", f.Territory)
	}
	if f.Route != "" {
		query = query.Where("route = ?", f.Route)
	}
	if !f.Since.IsZero() {
		query = query.Where("occurred_at > ?", f.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entryModels []models.ActivityEntryModel
	if err := query.
		Order("occurred_at DESC, id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]activity.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = model.ToDomain()
	}
	return entries, total, nil
}
