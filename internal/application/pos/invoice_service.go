package pos

import (
	"context"
	"time"

	"github.com/erp/pos-gateway/internal/domain/activity"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubmitInvoiceRequest creates and submits a POS sale in one step.
type SubmitInvoiceRequest struct {
	Profile       string
	Customer      string
	IsReturn      bool
	ReturnAgainst string
	PostingDate   time.Time
	Items         []pos.InvoiceItem
	Payments      []pos.InvoicePayment
}

// InvoiceService submits and cancels sales invoices. Every mutation
// requires an open shift for the profile.
type InvoiceService struct {
	engine   pos.DocumentEngine
	invoices pos.InvoiceRepository
	shifts   pos.ShiftRepository
	profiles pos.ProfileRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(engine pos.DocumentEngine, invoices pos.InvoiceRepository, shifts pos.ShiftRepository, profiles pos.ProfileRepository, recorder ActivityRecorder, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		engine:   engine,
		invoices: invoices,
		shifts:   shifts,
		profiles: profiles,
		activity: recorder,
		logger:   logger,
	}
}

// Submit validates and posts a sale. The invoice inherits company and
// warehouse from the shift's profile; lines without a warehouse get the
// profile's.
func (s *InvoiceService) Submit(ctx context.Context, userID string, req SubmitInvoiceRequest) (*pos.SalesInvoice, error) {
	shift, profile, err := s.requireOpenShift(ctx, userID, req.Profile)
	if err != nil {
		return nil, err
	}

	postingDate := req.PostingDate
	if postingDate.IsZero() {
		postingDate = shift.PostingDate
	}
	items := make([]pos.InvoiceItem, len(req.Items))
	copy(items, req.Items)
	for i := range items {
		if items[i].Warehouse == "" {
			items[i].Warehouse = profile.Warehouse
		}
	}

	invoice := &pos.SalesInvoice{
		ID:            newDocID("SINV"),
		Company:       profile.Company,
		Profile:       profile.Name,
		Customer:      req.Customer,
		IsReturn:      req.IsReturn,
		ReturnAgainst: req.ReturnAgainst,
		PostingDate:   postingDate,
		Items:         items,
		Payments:      req.Payments,
	}
	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	if invoice.IsReturn && invoice.ReturnAgainst != "" {
		if _, err := s.invoices.FindByID(ctx, invoice.ReturnAgainst); err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "return references an unknown invoice")
		}
	}
	for _, payment := range req.Payments {
		if payment.Amount.LessThan(decimal.Zero) && !invoice.IsReturn {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "negative payment amounts are only allowed on returns")
		}
	}

	if err := s.engine.SubmitInvoice(ctx, invoice); err != nil {
		return nil, err
	}

	s.record(ctx, userID, profile, activity.ActionInvoiceCreated, invoice.ID)
	s.logger.Info("invoice submitted",
		zap.String("invoice_id", invoice.ID),
		zap.String("customer", invoice.Customer),
		zap.String("status", string(invoice.Status)))
	return invoice, nil
}

// Cancel cancels a submitted invoice and reverses its stock effect.
func (s *InvoiceService) Cancel(ctx context.Context, userID, invoiceID string) (*pos.SalesInvoice, error) {
	if invoiceID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invoice_id is required")
	}
	invoice, err := s.engine.CancelInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if profile, perr := s.profiles.FindByName(ctx, invoice.Profile); perr == nil {
		s.record(ctx, userID, profile, activity.ActionInvoiceCancelled, invoice.ID)
	}
	s.logger.Info("invoice cancelled",
		zap.String("invoice_id", invoice.ID),
		zap.String("user_id", userID))
	return invoice, nil
}

// Get returns one invoice by ID.
func (s *InvoiceService) Get(ctx context.Context, invoiceID string) (*pos.SalesInvoice, error) {
	return s.invoices.FindByID(ctx, invoiceID)
}

func (s *InvoiceService) requireOpenShift(ctx context.Context, userID, profileName string) (*pos.Shift, *pos.Profile, error) {
	var shift *pos.Shift
	var err error
	if profileName != "" {
		shift, err = s.shifts.FindOpen(ctx, userID, profileName)
	} else {
		shift, err = s.shifts.FindAnyOpen(ctx, userID)
	}
	if err != nil {
		return nil, nil, shared.NewDomainError("PRECONDITION_FAILED", "an open shift is required")
	}
	profile, err := s.profiles.FindByName(ctx, shift.Profile)
	if err != nil {
		return nil, nil, err
	}
	return shift, profile, nil
}

func (s *InvoiceService) record(ctx context.Context, userID string, profile *pos.Profile, action, subject string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, activity.Entry{
		UserID:    userID,
		Action:    action,
		Subject:   subject,
		Company:   profile.Company,
		Profile:   profile.Name,
		Warehouse: profile.Warehouse,
		Territory: profile.Territory,
		Route:     profile.Route,
	})
}
