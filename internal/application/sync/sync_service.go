package sync

import (
	"context"
	"errors"
	"time"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/inventory"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Collection names accepted by Delta.
const (
	CollectionItems     = "items"
	CollectionCustomers = "customers"
	CollectionInvoices  = "invoices"
	CollectionPayments  = "payments"
)

// PolicyProvider yields the current access policy.
type PolicyProvider interface {
	Get(ctx context.Context) (*access.AccessPolicy, error)
}

// Pagination describes one page of a collection.
type Pagination struct {
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

// ItemPayload is one consolidated catalog entry shipped to the client.
type ItemPayload struct {
	ItemCode  string           `json:"item_code"`
	ItemName  string           `json:"item_name"`
	ItemGroup string           `json:"item_group,omitempty"`
	Barcode   string           `json:"barcode,omitempty"`
	UOM       string           `json:"uom,omitempty"`
	Rate      decimal.Decimal  `json:"rate"`
	Currency  string           `json:"currency,omitempty"`
	Qty       decimal.Decimal  `json:"qty"`
	Alert     *inventory.Alert `json:"alert,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DeltaPage is one page of one collection. Exactly one of the item
// slices is populated, matching Collection.
type DeltaPage struct {
	Collection string             `json:"collection"`
	ServerTime time.Time          `json:"server_time"`
	Pagination Pagination         `json:"pagination"`
	Items      []ItemPayload      `json:"items,omitempty"`
	Customers  []pos.Customer     `json:"customers,omitempty"`
	Invoices   []pos.SalesInvoice `json:"invoices,omitempty"`
	Payments   []pos.PaymentEntry `json:"payments,omitempty"`
}

// BootstrapResult is the full initial payload for a freshly-opened shift:
// the first page of every collection plus the slow-moving reference data.
// ServerTime is the watermark the client hands back on its first delta.
type BootstrapResult struct {
	Shift          *pos.Shift         `json:"shift"`
	Profile        *pos.Profile       `json:"profile"`
	ServerTime     time.Time          `json:"server_time"`
	Company        *pos.Company       `json:"company,omitempty"`
	CurrencyRates  []pos.CurrencyRate `json:"currency_rates,omitempty"`
	PaymentTerms   []string           `json:"payment_terms,omitempty"`
	CustomerGroups []string           `json:"customer_groups,omitempty"`
	Territories    []string           `json:"territories,omitempty"`
	Items          *DeltaPage         `json:"items"`
	Customers      *DeltaPage         `json:"customers"`
	Invoices       *DeltaPage         `json:"invoices"`
	Payments       *DeltaPage         `json:"payments"`
}

// SyncService pages ERP data down to the mobile client: a full bootstrap
// at shift open, then watermark-based deltas.
type SyncService struct {
	policies  PolicyProvider
	shifts    pos.ShiftRepository
	profiles  pos.ProfileRepository
	items     inventory.ItemReader
	rules     inventory.AlertRuleRepository
	customers pos.CustomerRepository
	invoices  pos.InvoiceRepository
	payments  pos.PaymentRepository
	reference pos.ReferenceReader
	logger    *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	policies PolicyProvider,
	shifts pos.ShiftRepository,
	profiles pos.ProfileRepository,
	items inventory.ItemReader,
	rules inventory.AlertRuleRepository,
	customers pos.CustomerRepository,
	invoices pos.InvoiceRepository,
	payments pos.PaymentRepository,
	reference pos.ReferenceReader,
	logger *zap.Logger,
) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		policies:  policies,
		shifts:    shifts,
		profiles:  profiles,
		items:     items,
		rules:     rules,
		customers: customers,
		invoices:  invoices,
		payments:  payments,
		reference: reference,
		logger:    logger,
	}
}

// Bootstrap assembles the initial payload. An open shift is required:
// the client opens its session first, then bootstraps against it.
func (s *SyncService) Bootstrap(ctx context.Context, userID, profileName string) (*BootstrapResult, error) {
	shift, err := s.openShift(ctx, userID, profileName)
	if err != nil {
		return nil, shared.NewDomainError("PRECONDITION_FAILED", "bootstrap requires an open shift")
	}
	profile, err := s.profiles.FindByName(ctx, shift.Profile)
	if err != nil {
		return nil, err
	}
	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}

	serverTime := time.Now().UTC()
	result := &BootstrapResult{Shift: shift, Profile: profile, ServerTime: serverTime}

	base := DeltaRequest{Profile: profile.Name, Limit: policy.DefaultSyncPageSize}
	for _, collection := range []string{CollectionItems, CollectionCustomers, CollectionInvoices, CollectionPayments} {
		req := base
		req.Collection = collection
		page, err := s.page(ctx, shift, profile, policy, req, serverTime)
		if err != nil {
			return nil, err
		}
		switch collection {
		case CollectionItems:
			result.Items = page
		case CollectionCustomers:
			result.Customers = page
		case CollectionInvoices:
			result.Invoices = page
		case CollectionPayments:
			result.Payments = page
		}
	}

	s.attachReference(ctx, result, profile, shift)
	return result, nil
}

// DeltaRequest asks for one page of one collection. A zero Since means
// bootstrap semantics: no lower bound (and the bootstrap windows for
// invoices).
type DeltaRequest struct {
	Profile    string
	Collection string
	Since      time.Time
	Search     string
	Offset     int
	Limit      int
}

// Delta returns one page of changes since the client's watermark. The
// returned ServerTime is the next watermark; it is captured before the
// query so updates racing the sync are re-sent rather than lost.
func (s *SyncService) Delta(ctx context.Context, userID string, req DeltaRequest) (*DeltaPage, error) {
	shift, err := s.openShift(ctx, userID, req.Profile)
	if err != nil {
		return nil, shared.NewDomainError("PRECONDITION_FAILED", "sync requires an open shift")
	}
	profile, err := s.profiles.FindByName(ctx, shift.Profile)
	if err != nil {
		return nil, err
	}
	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}
	return s.page(ctx, shift, profile, policy, req, time.Now().UTC())
}

func (s *SyncService) page(ctx context.Context, shift *pos.Shift, profile *pos.Profile, policy *access.AccessPolicy, req DeltaRequest, serverTime time.Time) (*DeltaPage, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = policy.DefaultSyncPageSize
	}
	if limit > access.MaxSyncPageSize {
		limit = access.MaxSyncPageSize
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	page := &DeltaPage{
		Collection: req.Collection,
		ServerTime: serverTime,
		Pagination: Pagination{Offset: offset, Limit: limit},
	}

	switch req.Collection {
	case CollectionItems:
		views, total, err := s.items.FindDelta(ctx, inventory.ItemFilter{
			Company:   profile.Company,
			Warehouse: profile.Warehouse,
			PriceList: profile.PriceList,
			Since:     req.Since,
			Search:    req.Search,
			Offset:    offset,
			Limit:     limit,
		})
		if err != nil {
			return nil, err
		}
		page.Items, err = s.shapeItems(ctx, views, policy)
		if err != nil {
			return nil, err
		}
		s.finish(page, len(views), total)

	case CollectionCustomers:
		filter := pos.CustomerFilter{
			Company: profile.Company,
			Since:   req.Since,
			Search:  req.Search,
			Offset:  offset,
			Limit:   limit,
		}
		// Route outranks territory, but only in deployments whose
		// customer records actually carry routes.
		if profile.Route != "" {
			hasRoute, err := s.customers.HasRouteAttribute(ctx)
			if err != nil {
				return nil, err
			}
			if hasRoute {
				filter.Route = profile.Route
			} else {
				filter.Territory = profile.Territory
			}
		} else {
			filter.Territory = profile.Territory
		}
		customers, total, err := s.customers.FindDelta(ctx, filter)
		if err != nil {
			return nil, err
		}
		page.Customers = customers
		s.finish(page, len(customers), total)

	case CollectionInvoices:
		filter := pos.DeltaFilter{
			Company: profile.Company,
			Profile: profile.Name,
			Since:   req.Since,
			Offset:  offset,
			Limit:   limit,
		}
		var invoices []pos.SalesInvoice
		var total int64
		var err error
		if req.Since.IsZero() {
			invoices, total, err = s.invoices.FindBootstrap(ctx, filter, policy.BootstrapInvoiceDays, policy.RecentPaidInvoiceDays)
		} else {
			invoices, total, err = s.invoices.FindDelta(ctx, filter)
		}
		if err != nil {
			return nil, err
		}
		page.Invoices = invoices
		s.finish(page, len(invoices), total)

	case CollectionPayments:
		payments, total, err := s.payments.FindDelta(ctx, pos.DeltaFilter{
			Company: profile.Company,
			Profile: profile.Name,
			Since:   req.Since,
			Offset:  offset,
			Limit:   limit,
		})
		if err != nil {
			return nil, err
		}
		page.Payments = payments
		s.finish(page, len(payments), total)

	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unknown collection: "+req.Collection)
	}
	return page, nil
}

func (s *SyncService) finish(page *DeltaPage, count int, total int64) {
	page.Pagination.Total = total
	page.Pagination.HasMore = int64(page.Pagination.Offset+count) < total
}

// shapeItems converts item views to client payloads. Negative quantities
// are masked to zero unless the item is in an alerting state, so stale
// ledger noise never shows up as sellable stock, while genuinely
// alert-worthy shortfalls stay visible.
func (s *SyncService) shapeItems(ctx context.Context, views []inventory.ItemView, policy *access.AccessPolicy) ([]ItemPayload, error) {
	var rules []inventory.AlertRule
	if policy.EnableInventoryAlerts {
		var err error
		rules, err = s.rules.FindAll(ctx)
		if err != nil {
			return nil, err
		}
	}
	defaults := inventory.RuleDefaults{
		CriticalRatio: policy.AlertCriticalRatio,
		LowRatio:      policy.AlertLowRatio,
	}

	payloads := make([]ItemPayload, 0, len(views))
	for i := range views {
		view := &views[i]
		payload := ItemPayload{
			ItemCode:  view.ItemCode,
			ItemName:  view.ItemName,
			ItemGroup: view.ItemGroup,
			Barcode:   view.Barcode,
			UOM:       view.UOM,
			Rate:      view.Rate,
			Currency:  view.Currency,
			Qty:       view.Snapshot.Qty(),
			UpdatedAt: view.UpdatedAt,
		}
		if policy.EnableInventoryAlerts {
			alert := inventory.Evaluate(&view.Snapshot, rules, defaults)
			if alert.Status != inventory.AlertNone {
				payload.Alert = &alert
			}
		}
		if payload.Qty.IsNegative() && payload.Alert == nil {
			payload.Qty = decimal.Zero
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

func (s *SyncService) attachReference(ctx context.Context, result *BootstrapResult, profile *pos.Profile, shift *pos.Shift) {
	company, err := s.reference.Company(ctx, profile.Company)
	if err == nil {
		result.Company = company
	} else if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("company lookup failed during bootstrap", zap.Error(err))
	}

	base := profile.Currency
	if base == "" && company != nil {
		base = company.DefaultCurrency
	}
	if base != "" {
		rates, err := s.reference.ExchangeRates(ctx, base, shift.PostingDate)
		if err != nil {
			s.logger.Warn("exchange rate lookup failed during bootstrap", zap.Error(err))
		} else {
			result.CurrencyRates = rates
		}
	}

	if terms, err := s.reference.PaymentTerms(ctx); err == nil {
		result.PaymentTerms = terms
	}
	if groups, err := s.reference.CustomerGroups(ctx); err == nil {
		result.CustomerGroups = groups
	}
	if territories, err := s.reference.Territories(ctx); err == nil {
		result.Territories = territories
	}
}

func (s *SyncService) openShift(ctx context.Context, userID, profileName string) (*pos.Shift, error) {
	if profileName != "" {
		return s.shifts.FindOpen(ctx, userID, profileName)
	}
	return s.shifts.FindAnyOpen(ctx, userID)
}
