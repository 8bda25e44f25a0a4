package inventory

import (
	"context"
	"sort"

	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AlertStatus is the computed stock severity for an item/warehouse pair.
type AlertStatus string

const (
	AlertNone     AlertStatus = "NONE"
	AlertLow      AlertStatus = "LOW"
	AlertCritical AlertStatus = "CRITICAL"
)

// StockSnapshot is a point-in-time stock reading from the record store.
// ProjectedQty may be unset when no projection exists for the bin.
type StockSnapshot struct {
	ItemCode     string
	ItemGroup    string
	Warehouse    string
	ActualQty    decimal.Decimal
	ProjectedQty *decimal.Decimal
	ReorderLevel decimal.Decimal
	ReorderQty   decimal.Decimal
}

// Qty returns the quantity the evaluator scores: the projection when one
// exists, otherwise the actual bin quantity.
func (s *StockSnapshot) Qty() decimal.Decimal {
	if s.ProjectedQty != nil {
		return *s.ProjectedQty
	}
	return s.ActualQty
}

// AlertRule is one prioritized threshold policy. Empty Warehouse or
// ItemGroup acts as a wildcard. (Warehouse, ItemGroup) is unique across
// the rule table.
type AlertRule struct {
	ID            string  `json:"id"`
	Warehouse     string  `json:"warehouse,omitempty"`
	ItemGroup     string  `json:"item_group,omitempty"`
	CriticalRatio float64 `json:"critical_ratio"`
	LowRatio      float64 `json:"low_ratio"`
	Priority      uint    `json:"priority"`
	Limit         uint    `json:"limit"`
}

// Key renders the rule's identifying pair for explainability output.
func (r *AlertRule) Key() string {
	wh, group := r.Warehouse, r.ItemGroup
	if wh == "" {
		wh = "*"
	}
	if group == "" {
		group = "*"
	}
	return wh + "/" + group
}

// Validate enforces the rule-table invariants at write time. The
// evaluator assumes these hold.
func (r *AlertRule) Validate() error {
	if r.CriticalRatio < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "critical_ratio cannot be negative")
	}
	if r.LowRatio < r.CriticalRatio {
		return shared.NewDomainError("VALIDATION_ERROR", "low_ratio must be >= critical_ratio")
	}
	return nil
}

// specificity scores how precisely a rule names its scope: both fields
// beat one, one beats the full wildcard.
func (r *AlertRule) specificity() int {
	n := 0
	if r.Warehouse != "" {
		n++
	}
	if r.ItemGroup != "" {
		n++
	}
	return n
}

func (r *AlertRule) matches(s *StockSnapshot) bool {
	if r.Warehouse != "" && r.Warehouse != s.Warehouse {
		return false
	}
	if r.ItemGroup != "" && r.ItemGroup != s.ItemGroup {
		return false
	}
	return true
}

// RuleDefaults supplies ratios when no rule matches a snapshot.
type RuleDefaults struct {
	CriticalRatio float64
	LowRatio      float64
}

// Alert is the structured evaluation result. Rule is empty when the
// defaults applied; thresholds are always populated for explainability.
type Alert struct {
	Status            AlertStatus     `json:"status"`
	RuleKey           string          `json:"rule_key,omitempty"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
	LowThreshold      decimal.Decimal `json:"low_threshold"`
	Qty               decimal.Decimal `json:"qty"`
}

// SelectRule picks the rule governing a snapshot: lowest priority first,
// then the more specific scope among equal priorities, first match wins.
// Returns nil when no rule matches.
func SelectRule(s *StockSnapshot, rules []AlertRule) *AlertRule {
	matching := make([]AlertRule, 0, len(rules))
	for _, r := range rules {
		if r.matches(s) {
			matching = append(matching, r)
		}
	}
	if len(matching) == 0 {
		return nil
	}
	sort.SliceStable(matching, func(i, j int) bool {
		if matching[i].Priority != matching[j].Priority {
			return matching[i].Priority < matching[j].Priority
		}
		return matching[i].specificity() > matching[j].specificity()
	})
	return &matching[0]
}

// Evaluate computes the alert status for one snapshot. It is a pure
// function: identical inputs always yield identical output.
func Evaluate(s *StockSnapshot, rules []AlertRule, defaults RuleDefaults) Alert {
	critical := defaults.CriticalRatio
	low := defaults.LowRatio
	ruleKey := ""
	if rule := SelectRule(s, rules); rule != nil {
		critical = rule.CriticalRatio
		low = rule.LowRatio
		ruleKey = rule.Key()
	}

	qty := s.Qty()
	criticalAt := s.ReorderLevel.Mul(decimal.NewFromFloat(critical))
	lowAt := s.ReorderLevel.Mul(decimal.NewFromFloat(low))

	alert := Alert{
		Status:            AlertNone,
		RuleKey:           ruleKey,
		CriticalThreshold: criticalAt,
		LowThreshold:      lowAt,
		Qty:               qty,
	}

	switch {
	case qty.LessThanOrEqual(decimal.Zero):
		alert.Status = AlertCritical
	case s.ReorderLevel.IsPositive() && qty.LessThanOrEqual(criticalAt):
		alert.Status = AlertCritical
	case s.ReorderLevel.IsPositive() && qty.LessThanOrEqual(lowAt):
		alert.Status = AlertLow
	}
	return alert
}

// AlertRuleRepository persists the prioritized rule table.
type AlertRuleRepository interface {
	FindAll(ctx context.Context) ([]AlertRule, error)
	// Save upserts a rule; the (warehouse, item_group) pair is unique.
	Save(ctx context.Context, rule *AlertRule) error
	Delete(ctx context.Context, id string) error
}

// StockReader reads stock snapshots from the record store.
type StockReader interface {
	Snapshots(ctx context.Context, company, warehouse string, offset, limit int) ([]StockSnapshot, int64, error)
}
