package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a POS customer record.
type Customer struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Mobile        string          `json:"mobile,omitempty"`
	CustomerGroup string          `json:"customer_group,omitempty"`
	Territory     string          `json:"territory,omitempty"`
	Route         string          `json:"route,omitempty"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Disabled      bool            `json:"disabled"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomerFilter scopes a paginated customer query. Route takes
// precedence over Territory when both are set; a deployment whose
// customer records carry no route attribute falls back to territory.
type CustomerFilter struct {
	Company   string
	Route     string
	Territory string
	Since     time.Time
	Search    string
	Offset    int
	Limit     int
}

// CustomerRepository persists customers and supports the upsert
// resolution order: id, then mobile, then exact name.
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByMobile(ctx context.Context, mobile string) (*Customer, error)
	FindByName(ctx context.Context, name string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
	FindDelta(ctx context.Context, f CustomerFilter) ([]Customer, int64, error)
	// HasRouteAttribute reports whether any customer row in this
	// deployment carries a route value, which decides the filter
	// precedence.
	HasRouteAttribute(ctx context.Context) (bool, error)
}
