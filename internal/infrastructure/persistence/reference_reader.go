package persistence

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReferenceReader implements pos.ReferenceReader using GORM
type GormReferenceReader struct {
	db *gorm.DB
}

// NewGormReferenceReader creates a new GormReferenceReader
func NewGormReferenceReader(db *gorm.DB) *GormReferenceReader {
	return &GormReferenceReader{db: db}
}

// Company finds a company by name
func (r *GormReferenceReader) Company(ctx context.Context, name string) (*pos.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExchangeRates returns the latest rate on or before date for every
// currency that has one against the base. A currency with only an
// inverse quote gets the derived reciprocal.
func (r *GormReferenceReader) ExchangeRates(ctx context.Context, base string, date time.Time) ([]pos.CurrencyRate, error) {
	var rateModels []models.ExchangeRateModel
	if err := r.db.WithContext(ctx).
		Where("(from_currency = ? OR to_currency = ?) AND date <= ?", base, base, date).
		Order("date ASC").
		Find(&rateModels).Error; err != nil {
		return nil, err
	}

	// Later rows overwrite earlier ones, so each currency keeps its most
	// recent quote. Direct quotes win over derived inverses of the same
	// date ordering.
	latest := make(map[string]pos.CurrencyRate)
	for _, model := range rateModels {
		switch {
		case model.ToCurrency == base && model.FromCurrency != base:
			latest[model.FromCurrency] = pos.CurrencyRate{
				Currency: model.FromCurrency,
				Rate:     model.Rate,
				Date:     model.Date,
			}
		case model.FromCurrency == base && model.ToCurrency != base:
			if model.Rate.IsZero() {
				continue
			}
			latest[model.ToCurrency] = pos.CurrencyRate{
				Currency: model.ToCurrency,
				Rate:     decimal.NewFromInt(1).Div(model.Rate),
				Date:     model.Date,
			}
		}
	}

	rates := make([]pos.CurrencyRate, 0, len(latest))
	for _, rate := range latest {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool {
		return rates[i].Currency < rates[j].Currency
	})
	return rates, nil
}

// PaymentTerms lists payment terms template names
func (r *GormReferenceReader) PaymentTerms(ctx context.Context) ([]string, error) {
	return r.pluckNames(ctx, &models.PaymentTermModel{})
}

// CustomerGroups lists customer group names
func (r *GormReferenceReader) CustomerGroups(ctx context.Context) ([]string, error) {
	return r.pluckNames(ctx, &models.CustomerGroupModel{})
}

// Territories lists territory names
func (r *GormReferenceReader) Territories(ctx context.Context) ([]string, error) {
	return r.pluckNames(ctx, &models.TerritoryModel{})
}

func (r *GormReferenceReader) pluckNames(ctx context.Context, model any) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(model).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
