package persistence

import (
	"context"

	"github.com/erp/pos-gateway/internal/domain/inventory"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockReader implements inventory.StockReader using GORM
type GormStockReader struct {
	db *gorm.DB
}

// NewGormStockReader creates a new GormStockReader
func NewGormStockReader(db *gorm.DB) *GormStockReader {
	return &GormStockReader{db: db}
}

// binRow joins the bin with its item group for rule matching.
type binRow struct {
	ItemCode     string
	ItemGroup    string
	Warehouse    string
	ActualQty    decimal.Decimal
	ProjectedQty *decimal.Decimal
	ReorderLevel decimal.Decimal
	ReorderQty   decimal.Decimal
}

// Snapshots pages bin snapshots for the warehouse, enriched with each
// item's group so the alert evaluator can match group-scoped rules.
func (r *GormStockReader) Snapshots(ctx context.Context, company, warehouse string, offset, limit int) ([]inventory.StockSnapshot, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BinModel{}).
		Select(`bins.item_code, COALESCE(items.item_group, '') AS item_group, bins.warehouse,
			bins.actual_qty, bins.projected_qty, bins.reorder_level, bins.reorder_qty`).
		Joins("LEFT JOIN items ON items.item_code = bins.item_code").
		Where("bins.warehouse = ?", warehouse)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []binRow
	if err := query.
		Order("bins.item_code ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	snapshots := make([]inventory.StockSnapshot, len(rows))
	for i, row := range rows {
		snapshots[i] = inventory.StockSnapshot{
			ItemCode:     row.ItemCode,
			ItemGroup:    row.ItemGroup,
			Warehouse:    row.Warehouse,
			ActualQty:    row.ActualQty,
			ProjectedQty: row.ProjectedQty,
			ReorderLevel: row.ReorderLevel,
			ReorderQty:   row.ReorderQty,
		}
	}
	return snapshots, total, nil
}
