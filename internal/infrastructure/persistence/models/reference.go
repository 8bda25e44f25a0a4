package models

import (
	"time"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/shopspring/decimal"
)

// CompanyModel is the persistence model for a company.
type CompanyModel struct {
	Name            string `gorm:"type:varchar(140);primaryKey"`
	DefaultCurrency string `gorm:"type:varchar(10);not null"`
	Country         string `gorm:"type:varchar(100)"`
	TaxID           string `gorm:"type:varchar(50)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company.
func (m *CompanyModel) ToDomain() *pos.Company {
	return &pos.Company{
		Name:            m.Name,
		DefaultCurrency: m.DefaultCurrency,
		Country:         m.Country,
		TaxID:           m.TaxID,
	}
}

// ExchangeRateModel is one dated currency pair rate.
type ExchangeRateModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	FromCurrency string          `gorm:"type:varchar(10);not null;index:idx_exchange_pair,priority:1"`
	ToCurrency   string          `gorm:"type:varchar(10);not null;index:idx_exchange_pair,priority:2"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Date         time.Time       `gorm:"not null;index"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "currency_exchange_rates"
}

// PaymentTermModel is one named payment terms template.
type PaymentTermModel struct {
	Name      string `gorm:"type:varchar(140);primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (PaymentTermModel) TableName() string {
	return "payment_terms"
}

// CustomerGroupModel is one customer group name.
type CustomerGroupModel struct {
	Name      string `gorm:"type:varchar(140);primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (CustomerGroupModel) TableName() string {
	return "customer_groups"
}

// TerritoryModel is one territory name.
type TerritoryModel struct {
	Name      string `gorm:"type:varchar(140);primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (TerritoryModel) TableName() string {
	return "territories"
}
