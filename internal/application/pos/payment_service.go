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

// SubmitPaymentRequest posts a customer payment, optionally settling an
// invoice.
type SubmitPaymentRequest struct {
	Profile          string
	Customer         string
	ModeOfPayment    string
	Amount           decimal.Decimal
	ReferenceInvoice string
	PostingDate      time.Time
}

// PaymentService posts customer payments.
type PaymentService struct {
	engine   pos.DocumentEngine
	payments pos.PaymentRepository
	shifts   pos.ShiftRepository
	profiles pos.ProfileRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(engine pos.DocumentEngine, payments pos.PaymentRepository, shifts pos.ShiftRepository, profiles pos.ProfileRepository, recorder ActivityRecorder, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		engine:   engine,
		payments: payments,
		shifts:   shifts,
		profiles: profiles,
		activity: recorder,
		logger:   logger,
	}
}

// Submit posts a payment under the user's open shift. The mode of
// payment defaults to the profile's.
func (s *PaymentService) Submit(ctx context.Context, userID string, req SubmitPaymentRequest) (*pos.PaymentEntry, error) {
	var shift *pos.Shift
	var err error
	if req.Profile != "" {
		shift, err = s.shifts.FindOpen(ctx, userID, req.Profile)
	} else {
		shift, err = s.shifts.FindAnyOpen(ctx, userID)
	}
	if err != nil {
		return nil, shared.NewDomainError("PRECONDITION_FAILED", "an open shift is required")
	}
	profile, err := s.profiles.FindByName(ctx, shift.Profile)
	if err != nil {
		return nil, err
	}

	if req.Customer == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "customer is required")
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "amount must be positive")
	}
	mode := req.ModeOfPayment
	if mode == "" {
		mode = profile.DefaultPaymentMode()
	}
	if mode == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "mode_of_payment is required")
	}

	postingDate := req.PostingDate
	if postingDate.IsZero() {
		postingDate = shift.PostingDate
	}
	entry := &pos.PaymentEntry{
		ID:               newDocID("PAY"),
		PaymentType:      pos.PaymentReceive,
		Company:          profile.Company,
		Profile:          profile.Name,
		Customer:         req.Customer,
		PostingDate:      postingDate,
		ModeOfPayment:    mode,
		Amount:           req.Amount,
		ReferenceInvoice: req.ReferenceInvoice,
	}
	if err := s.engine.SubmitPayment(ctx, entry); err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Record(ctx, activity.Entry{
			UserID:    userID,
			Action:    activity.ActionPaymentPosted,
			Subject:   entry.ID,
			Company:   profile.Company,
			Profile:   profile.Name,
			Warehouse: profile.Warehouse,
			Territory: profile.Territory,
			Route:     profile.Route,
		})
	}
	s.logger.Info("payment posted",
		zap.String("payment_id", entry.ID),
		zap.String("customer", entry.Customer),
		zap.String("mode", mode))
	return entry, nil
}

// TransferRequest moves funds between two company accounts, e.g. a cash
// deposit from a register into the bank.
type TransferRequest struct {
	Company        string
	PostingDate    time.Time
	ModeOfPayment  string
	PaidFrom       string
	PaidTo         string
	PaidAmount     decimal.Decimal
	ReceivedAmount decimal.Decimal
}

// SubmitTransfer posts an internal transfer between two accounts of the
// same company. Either side's amount may be given; the missing one
// mirrors the other.
func (s *PaymentService) SubmitTransfer(ctx context.Context, userID string, req TransferRequest) (*pos.PaymentEntry, error) {
	if req.Company == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "company is required")
	}
	if req.PaidFrom == "" || req.PaidTo == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "paid_from and paid_to are required")
	}
	if req.PaidFrom == req.PaidTo {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "paid_from and paid_to must differ")
	}
	amount := req.PaidAmount
	if !amount.IsPositive() {
		amount = req.ReceivedAmount
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "paid_amount or received_amount must be positive")
	}
	received := req.ReceivedAmount
	if !received.IsPositive() {
		received = amount
	}

	postingDate := req.PostingDate
	if postingDate.IsZero() {
		postingDate = time.Now().UTC()
	}
	entry := &pos.PaymentEntry{
		ID:             newDocID("PAY"),
		PaymentType:    pos.PaymentInternalTransfer,
		Company:        req.Company,
		PaidFrom:       req.PaidFrom,
		PaidTo:         req.PaidTo,
		PostingDate:    postingDate,
		ModeOfPayment:  req.ModeOfPayment,
		Amount:         amount,
		ReceivedAmount: received,
	}
	if err := s.engine.SubmitPayment(ctx, entry); err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Record(ctx, activity.Entry{
			UserID:  userID,
			Action:  activity.ActionPaymentPosted,
			Subject: entry.ID,
			Company: req.Company,
		})
	}
	s.logger.Info("internal transfer posted",
		zap.String("payment_id", entry.ID),
		zap.String("paid_from", req.PaidFrom),
		zap.String("paid_to", req.PaidTo))
	return entry, nil
}

// PaymentOutRequest pays a supplier, optionally allocating the amount
// against purchase invoices.
type PaymentOutRequest struct {
	Company       string
	PartyType     string
	Party         string
	PostingDate   time.Time
	ModeOfPayment string
	PaidTo        string
	Amount        decimal.Decimal
	References    []pos.PaymentReference
}

// SubmitPaymentOut posts an outgoing payment to a supplier. Reference
// rows without a document name are dropped; kept rows default to
// Purchase Invoice and must allocate a positive amount.
func (s *PaymentService) SubmitPaymentOut(ctx context.Context, userID string, req PaymentOutRequest) (*pos.PaymentEntry, error) {
	if req.Company == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "company is required")
	}
	if req.Party == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "party is required")
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "amount must be positive")
	}
	partyType := req.PartyType
	if partyType == "" {
		partyType = "Supplier"
	}

	references := make([]pos.PaymentReference, 0, len(req.References))
	for _, ref := range req.References {
		if ref.ReferenceName == "" {
			continue
		}
		if ref.ReferenceDoctype == "" {
			ref.ReferenceDoctype = "Purchase Invoice"
		}
		if !ref.AllocatedAmount.IsPositive() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "allocated_amount must be positive")
		}
		references = append(references, ref)
	}

	postingDate := req.PostingDate
	if postingDate.IsZero() {
		postingDate = time.Now().UTC()
	}
	entry := &pos.PaymentEntry{
		ID:            newDocID("PAY"),
		PaymentType:   pos.PaymentPay,
		Company:       req.Company,
		PartyType:     partyType,
		Party:         req.Party,
		PaidTo:        req.PaidTo,
		PostingDate:   postingDate,
		ModeOfPayment: req.ModeOfPayment,
		Amount:        req.Amount,
		References:    references,
	}
	if err := s.engine.SubmitPayment(ctx, entry); err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Record(ctx, activity.Entry{
			UserID:  userID,
			Action:  activity.ActionPaymentPosted,
			Subject: entry.ID,
			Company: req.Company,
		})
	}
	s.logger.Info("payment out posted",
		zap.String("payment_id", entry.ID),
		zap.String("party", req.Party),
		zap.String("party_type", partyType))
	return entry, nil
}

// Get returns one payment entry by ID.
func (s *PaymentService) Get(ctx context.Context, paymentID string) (*pos.PaymentEntry, error) {
	return s.payments.FindByID(ctx, paymentID)
}
