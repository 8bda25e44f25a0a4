package persistence

import (
	"context"

	"github.com/erp/pos-gateway/internal/domain/inventory"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAlertRuleRepository implements inventory.AlertRuleRepository using GORM
type GormAlertRuleRepository struct {
	db *gorm.DB
}

// NewGormAlertRuleRepository creates a new GormAlertRuleRepository
func NewGormAlertRuleRepository(db *gorm.DB) *GormAlertRuleRepository {
	return &GormAlertRuleRepository{db: db}
}

// FindAll returns the full rule table ordered by priority.
func (r *GormAlertRuleRepository) FindAll(ctx context.Context) ([]inventory.AlertRule, error) {
	var ruleModels []models.AlertRuleModel
	if err := r.db.WithContext(ctx).
		Order("priority ASC, warehouse ASC, item_group ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]inventory.AlertRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = model.ToDomain()
	}
	return rules, nil
}

// Save upserts a rule; the (warehouse, item_group) pair is unique.
func (r *GormAlertRuleRepository) Save(ctx context.Context, rule *inventory.AlertRule) error {
	var model models.AlertRuleModel
	model.FromDomain(rule)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse"}, {Name: "item_group"}},
			DoUpdates: clause.AssignmentColumns([]string{"critical_ratio", "low_ratio", "priority", "row_limit", "updated_at"}),
		}).
		Create(&model).Error
}

// Delete removes a rule by ID. Deleting an absent rule is not an error.
func (r *GormAlertRuleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Delete(&models.AlertRuleModel{}, "id = ?", id).Error
}
