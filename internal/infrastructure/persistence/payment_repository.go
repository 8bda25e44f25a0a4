package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements pos.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment entry by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id string) (*pos.PaymentEntry, error) {
	var model models.PaymentEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the payment entry.
func (r *GormPaymentRepository) Save(ctx context.Context, entry *pos.PaymentEntry) error {
	var model models.PaymentEntryModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindDelta pages payment entries modified since the watermark under the
// same widening rule as invoices.
func (r *GormPaymentRepository) FindDelta(ctx context.Context, f pos.DeltaFilter) ([]pos.PaymentEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PaymentEntryModel{}).
		Where("company = ?", f.Company)
	if f.Profile != "" {
		query = query.Where("(profile = ? OR profile = '')", f.Profile)
	}
	if !f.Since.IsZero() {
		query = query.Where("updated_at > ?", f.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentEntryModel
	if err := query.
		Order("updated_at ASC, id ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]pos.PaymentEntry, len(paymentModels))
	for i, model := range paymentModels {
		entries[i] = *model.ToDomain()
	}
	return entries, total, nil
}
