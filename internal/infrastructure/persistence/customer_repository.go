package persistence

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements pos.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id string) (*pos.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMobile finds a customer by mobile number
func (r *GormCustomerRepository) FindByMobile(ctx context.Context, mobile string) (*pos.Customer, error) {
	if mobile == "" {
		return nil, shared.ErrNotFound
	}
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("mobile = ?", mobile).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a customer by exact name
func (r *GormCustomerRepository) FindByName(ctx context.Context, name string) (*pos.Customer, error) {
	if name == "" {
		return nil, shared.ErrNotFound
	}
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the customer.
func (r *GormCustomerRepository) Save(ctx context.Context, customer *pos.Customer) error {
	var model models.CustomerModel
	model.FromDomain(customer)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindDelta pages customers modified since the watermark. Route filtering
// wins over territory when both are set.
func (r *GormCustomerRepository) FindDelta(ctx context.Context, f pos.CustomerFilter) ([]pos.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})

	if f.Route != "" {
		query = query.Where("route = ?", f.Route)
	} else if f.Territory != "" {
		query = query.Where("territory = ?", f.Territory)
	}
	if !f.Since.IsZero() {
		query = query.Where("updated_at > ?", f.Since)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where("name LIKE ? OR mobile LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customerModels []models.CustomerModel
	if err := query.
		Order("updated_at ASC, id ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&customerModels).Error; err != nil {
		return nil, 0, err
	}

	customers := make([]pos.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers, total, nil
}

// HasRouteAttribute reports whether any customer row carries a route
// value. Deployments that never set routes fall back to territory
// filtering.
func (r *GormCustomerRepository) HasRouteAttribute(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("route <> ''").
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
