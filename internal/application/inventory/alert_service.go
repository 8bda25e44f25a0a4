package inventory

import (
	"context"
	"sort"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/inventory"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// snapshotPageSize is the batch size used when walking the bin table.
const snapshotPageSize = 200

// PolicyProvider yields the current access policy.
type PolicyProvider interface {
	Get(ctx context.Context) (*access.AccessPolicy, error)
}

// ItemAlert pairs one stock snapshot with its evaluated severity.
type ItemAlert struct {
	ItemCode  string          `json:"item_code"`
	ItemGroup string          `json:"item_group,omitempty"`
	Warehouse string          `json:"warehouse"`
	Alert     inventory.Alert `json:"alert"`
}

// AlertReport is the evaluation result for one warehouse.
type AlertReport struct {
	Enabled   bool        `json:"enabled"`
	Warehouse string      `json:"warehouse"`
	Scanned   int         `json:"scanned"`
	Alerts    []ItemAlert `json:"alerts"`
	Truncated bool        `json:"truncated"`
}

// AlertService evaluates stock alerts and administers the rule table.
type AlertService struct {
	rules    inventory.AlertRuleRepository
	stock    inventory.StockReader
	policies PolicyProvider
	logger   *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(rules inventory.AlertRuleRepository, stock inventory.StockReader, policies PolicyProvider, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		rules:    rules,
		stock:    stock,
		policies: policies,
		logger:   logger,
	}
}

// EvaluateRequest scopes one alert evaluation.
type EvaluateRequest struct {
	Company   string
	Warehouse string
	Limit     int
}

// Evaluate walks every bin in the warehouse, scores each snapshot against
// the rule table, and returns the alerting items, critical first. The
// result is capped: the governing rule's limit when one applies, else the
// policy default.
func (s *AlertService) Evaluate(ctx context.Context, req EvaluateRequest) (*AlertReport, error) {
	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}

	report := &AlertReport{Warehouse: req.Warehouse, Enabled: policy.EnableInventoryAlerts}
	if !policy.EnableInventoryAlerts {
		return report, nil
	}
	if req.Warehouse == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "warehouse is required")
	}

	rules, err := s.rules.FindAll(ctx)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}
	defaults := inventory.RuleDefaults{
		CriticalRatio: policy.AlertCriticalRatio,
		LowRatio:      policy.AlertLowRatio,
	}

	limit := req.Limit
	var ruleLimit uint
	for offset := 0; ; offset += snapshotPageSize {
		snapshots, total, err := s.stock.Snapshots(ctx, req.Company, req.Warehouse, offset, snapshotPageSize)
		if err != nil {
			return nil, shared.ErrDependencyUnavailable
		}
		for i := range snapshots {
			snap := &snapshots[i]
			report.Scanned++
			alert := inventory.Evaluate(snap, rules, defaults)
			if alert.Status == inventory.AlertNone {
				continue
			}
			if rule := inventory.SelectRule(snap, rules); rule != nil && rule.Limit > ruleLimit {
				ruleLimit = rule.Limit
			}
			report.Alerts = append(report.Alerts, ItemAlert{
				ItemCode:  snap.ItemCode,
				ItemGroup: snap.ItemGroup,
				Warehouse: snap.Warehouse,
				Alert:     alert,
			})
		}
		if int64(offset+len(snapshots)) >= total || len(snapshots) == 0 {
			break
		}
	}

	// Critical before low, then scarcest first.
	sort.SliceStable(report.Alerts, func(i, j int) bool {
		a, b := report.Alerts[i].Alert, report.Alerts[j].Alert
		if a.Status != b.Status {
			return a.Status == inventory.AlertCritical
		}
		return a.Qty.LessThan(b.Qty)
	})

	if limit <= 0 {
		if ruleLimit > 0 {
			limit = int(ruleLimit)
		} else {
			limit = policy.AlertDefaultLimit
		}
	}
	if len(report.Alerts) > limit {
		report.Alerts = report.Alerts[:limit]
		report.Truncated = true
	}
	return report, nil
}

// ListRules returns the rule table ordered by priority.
func (s *AlertService) ListRules(ctx context.Context) ([]inventory.AlertRule, error) {
	return s.rules.FindAll(ctx)
}

// SaveRule validates and upserts one rule. A rule without a
// client-supplied ID gets a fresh one.
func (s *AlertService) SaveRule(ctx context.Context, rule *inventory.AlertRule) (*inventory.AlertRule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.Info("alert rule saved",
		zap.String("rule", rule.Key()),
		zap.Uint("priority", rule.Priority))
	return rule, nil
}

// DeleteRule removes one rule by ID.
func (s *AlertService) DeleteRule(ctx context.Context, id string) error {
	if id == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "rule id is required")
	}
	return s.rules.Delete(ctx, id)
}
