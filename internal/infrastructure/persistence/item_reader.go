package persistence

import (
	"context"
	"time"

	"github.com/erp/pos-gateway/internal/domain/inventory"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormItemReader implements inventory.ItemReader using GORM. Each row is
// consolidated from the item master, the price list rate, and the bin
// snapshot for the active warehouse.
type GormItemReader struct {
	db *gorm.DB
}

// NewGormItemReader creates a new GormItemReader
func NewGormItemReader(db *gorm.DB) *GormItemReader {
	return &GormItemReader{db: db}
}

// itemRow is the join projection scanned from the query.
type itemRow struct {
	ItemCode     string
	ItemName     string
	ItemGroup    string
	Barcode      string
	UOM          string
	Disabled     bool
	Rate         decimal.Decimal
	Currency     string
	ActualQty    decimal.Decimal
	ProjectedQty *decimal.Decimal
	ReorderLevel decimal.Decimal
	ReorderQty   decimal.Decimal
	UpdatedAt    time.Time
}

// FindDelta pages consolidated item views. The watermark covers all
// three source tables: a price or stock change re-syncs the item even
// when the master is untouched.
func (r *GormItemReader) FindDelta(ctx context.Context, f inventory.ItemFilter) ([]inventory.ItemView, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ItemModel{}).
		Select(`items.item_code, items.item_name, items.item_group, items.barcode,
			items.uom, items.disabled,
			COALESCE(item_prices.rate, 0) AS rate,
			COALESCE(item_prices.currency, '') AS currency,
			COALESCE(bins.actual_qty, 0) AS actual_qty,
			bins.projected_qty,
			COALESCE(bins.reorder_level, 0) AS reorder_level,
			COALESCE(bins.reorder_qty, 0) AS reorder_qty,
			items.updated_at AS updated_at`).
		Joins("LEFT JOIN item_prices ON item_prices.item_code = items.item_code AND item_prices.price_list = ?", f.PriceList).
		Joins("LEFT JOIN bins ON bins.item_code = items.item_code AND bins.warehouse = ?", f.Warehouse).
		Where("items.disabled = ?", false)

	if !f.Since.IsZero() {
		query = query.Where("items.updated_at > ? OR item_prices.updated_at > ? OR bins.updated_at > ?",
			f.Since, f.Since, f.Since)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where("items.item_name LIKE ? OR items.item_code LIKE ? OR items.barcode LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	countQuery := r.db.WithContext(ctx).Table("(?) AS sub", query.Session(&gorm.Session{}))
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []itemRow
	if err := query.
		Order("items.item_code ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	views := make([]inventory.ItemView, len(rows))
	for i, row := range rows {
		views[i] = inventory.ItemView{
			ItemCode:  row.ItemCode,
			ItemName:  row.ItemName,
			ItemGroup: row.ItemGroup,
			Barcode:   row.Barcode,
			UOM:       row.UOM,
			Disabled:  row.Disabled,
			Rate:      row.Rate,
			Currency:  row.Currency,
			UpdatedAt: row.UpdatedAt,
			Snapshot: inventory.StockSnapshot{
				ItemCode:     row.ItemCode,
				ItemGroup:    row.ItemGroup,
				Warehouse:    f.Warehouse,
				ActualQty:    row.ActualQty,
				ProjectedQty: row.ProjectedQty,
				ReorderLevel: row.ReorderLevel,
				ReorderQty:   row.ReorderQty,
			},
		}
	}
	return views, total, nil
}
