package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ItemView is one logical item consolidated from its source records: the
// item master, its price-list rate, and the stock snapshot for the active
// warehouse. The sync engine shapes these into client DTOs.
type ItemView struct {
	ItemCode     string
	ItemName     string
	ItemGroup    string
	Barcode      string
	UOM          string
	Disabled     bool
	Rate         decimal.Decimal
	Currency     string
	Snapshot     StockSnapshot
	UpdatedAt    time.Time
}

// ItemFilter scopes a paginated item query.
type ItemFilter struct {
	Company   string
	Warehouse string
	PriceList string
	Since     time.Time
	Search    string
	Offset    int
	Limit     int
}

// ItemReader pages consolidated item views from the record store.
type ItemReader interface {
	FindDelta(ctx context.Context, f ItemFilter) ([]ItemView, int64, error)
}
