package models

import (
	"time"

	"github.com/erp/pos-gateway/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for the item master.
type ItemModel struct {
	ItemCode  string `gorm:"type:varchar(140);primaryKey"`
	ItemName  string `gorm:"type:varchar(200);not null;index"`
	ItemGroup string `gorm:"type:varchar(140);index"`
	Barcode   string `gorm:"type:varchar(140);index"`
	UOM       string `gorm:"type:varchar(50)"`
	Disabled  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ItemPriceModel is one price-list rate for an item.
type ItemPriceModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	ItemCode  string          `gorm:"type:varchar(140);not null;uniqueIndex:idx_item_price,priority:1"`
	PriceList string          `gorm:"type:varchar(140);not null;uniqueIndex:idx_item_price,priority:2"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency  string          `gorm:"type:varchar(10)"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ItemPriceModel) TableName() string {
	return "item_prices"
}

// BinModel is the per-warehouse stock snapshot for an item. ProjectedQty
// is nullable: a missing projection means the evaluator scores ActualQty.
type BinModel struct {
	ID           uint             `gorm:"primaryKey;autoIncrement"`
	ItemCode     string           `gorm:"type:varchar(140);not null;uniqueIndex:idx_bin,priority:1"`
	Warehouse    string           `gorm:"type:varchar(140);not null;uniqueIndex:idx_bin,priority:2;index"`
	ActualQty    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ProjectedQty *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ReorderLevel decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderQty   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (BinModel) TableName() string {
	return "bins"
}

// AlertRuleModel is one prioritized stock-alert rule. Empty warehouse or
// item group is a wildcard; the pair is unique across the table.
type AlertRuleModel struct {
	ID            string  `gorm:"type:varchar(140);primaryKey"`
	Warehouse     string  `gorm:"type:varchar(140);uniqueIndex:idx_alert_rule,priority:1"`
	ItemGroup     string  `gorm:"type:varchar(140);uniqueIndex:idx_alert_rule,priority:2"`
	CriticalRatio float64 `gorm:"not null;default:0"`
	LowRatio      float64 `gorm:"not null;default:0"`
	Priority      uint    `gorm:"not null;default:0"`
	Limit         uint    `gorm:"column:row_limit;not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (AlertRuleModel) TableName() string {
	return "stock_alert_rules"
}

// ToDomain converts the persistence model to a domain AlertRule.
func (m *AlertRuleModel) ToDomain() inventory.AlertRule {
	return inventory.AlertRule{
		ID:            m.ID,
		Warehouse:     m.Warehouse,
		ItemGroup:     m.ItemGroup,
		CriticalRatio: m.CriticalRatio,
		LowRatio:      m.LowRatio,
		Priority:      m.Priority,
		Limit:         m.Limit,
	}
}

// FromDomain populates the persistence model from a domain AlertRule.
func (m *AlertRuleModel) FromDomain(r *inventory.AlertRule) {
	m.ID = r.ID
	m.Warehouse = r.Warehouse
	m.ItemGroup = r.ItemGroup
	m.CriticalRatio = r.CriticalRatio
	m.LowRatio = r.LowRatio
	m.Priority = r.Priority
	m.Limit = r.Limit
}
