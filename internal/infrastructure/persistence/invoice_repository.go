package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements pos.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id string) (*pos.SalesInvoice, error) {
	var model models.SalesInvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the invoice.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *pos.SalesInvoice) error {
	var model models.SalesInvoiceModel
	model.FromDomain(invoice)
	return r.db.WithContext(ctx).Save(&model).Error
}

// scope applies the widening rule: documents tagged with the profile plus
// documents carrying no profile tag, always within the company.
func (r *GormInvoiceRepository) scope(query *gorm.DB, f pos.DeltaFilter) *gorm.DB {
	query = query.Where("company = ?", f.Company)
	if f.Profile != "" {
		query = query.Where("(profile = ? OR profile = '')", f.Profile)
	}
	return query
}

// FindDelta pages invoices modified since the watermark.
func (r *GormInvoiceRepository) FindDelta(ctx context.Context, f pos.DeltaFilter) ([]pos.SalesInvoice, int64, error) {
	query := r.scope(r.db.WithContext(ctx).Model(&models.SalesInvoiceModel{}), f)
	if !f.Since.IsZero() {
		query = query.Where("updated_at > ?", f.Since)
	}
	return r.page(query, f)
}

// FindBootstrap pages the initial working set: open invoices within
// openDays plus paid ones within paidDays.
func (r *GormInvoiceRepository) FindBootstrap(ctx context.Context, f pos.DeltaFilter, openDays, paidDays int) ([]pos.SalesInvoice, int64, error) {
	now := time.Now()
	openSince := now.AddDate(0, 0, -openDays)
	paidSince := now.AddDate(0, 0, -paidDays)

	openStatuses := make([]string, len(pos.OpenInvoiceStatuses))
	for i, status := range pos.OpenInvoiceStatuses {
		openStatuses[i] = string(status)
	}

	query := r.scope(r.db.WithContext(ctx).Model(&models.SalesInvoiceModel{}), f).
		Where("(status IN ? AND posting_date >= ?) OR (status = ? AND posting_date >= ?)",
			openStatuses, openSince, string(pos.InvoicePaid), paidSince)

	return r.page(query, f)
}

func (r *GormInvoiceRepository) page(query *gorm.DB, f pos.DeltaFilter) ([]pos.SalesInvoice, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.SalesInvoiceModel
	if err := query.
		Order("updated_at ASC, id ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]pos.SalesInvoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}
