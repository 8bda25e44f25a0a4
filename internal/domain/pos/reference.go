package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Company is the top-level organizational boundary every document is
// scoped to.
type Company struct {
	Name            string `json:"name"`
	DefaultCurrency string `json:"default_currency"`
	Country         string `json:"country,omitempty"`
	TaxID           string `json:"tax_id,omitempty"`
}

// CurrencyRate is one exchange rate against the company currency, dated
// at the shift posting date.
type CurrencyRate struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	Date     time.Time       `json:"date"`
}

// ReferenceReader serves the slow-moving reference data bundled into the
// bootstrap payload.
type ReferenceReader interface {
	Company(ctx context.Context, name string) (*Company, error)
	// ExchangeRates returns rates for the given currencies as of date.
	// A missing direct rate is derived from the inverse when one exists.
	ExchangeRates(ctx context.Context, base string, date time.Time) ([]CurrencyRate, error)
	PaymentTerms(ctx context.Context) ([]string, error)
	CustomerGroups(ctx context.Context) ([]string, error)
	Territories(ctx context.Context) ([]string, error)
}
