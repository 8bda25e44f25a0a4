package handler

import (
	"context"

	"github.com/erp/pos-gateway/internal/application/mutation"
	posapp "github.com/erp/pos-gateway/internal/application/pos"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment entry endpoints
type PaymentHandler struct {
	BaseHandler
	payments  *posapp.PaymentService
	mutations *mutation.Controller
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *posapp.PaymentService, mutations *mutation.Controller) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		mutations: mutations,
	}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Submit)
		payments.POST("/transfer", h.SubmitTransfer)
		payments.POST("/out", h.SubmitPaymentOut)
		payments.GET("/:id", h.Get)
	}
}

// SubmitPaymentRequest posts a standalone customer payment.
type SubmitPaymentRequest struct {
	RequestID        string          `json:"request_id"`
	Profile          string          `json:"profile"`
	POSProfile       string          `json:"pos_profile"`
	Customer         string          `json:"customer" binding:"required"`
	ModeOfPayment    string          `json:"mode_of_payment"`
	Amount           decimal.Decimal `json:"amount"`
	ReferenceInvoice string          `json:"reference_invoice"`
	PostingDate      string          `json:"posting_date" binding:"omitempty,posting_date"`
}

func (r SubmitPaymentRequest) profileName() string {
	if r.Profile != "" {
		return r.Profile
	}
	return r.POSProfile
}

// Submit posts a payment entry under the user's open shift.
func (h *PaymentHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}
	var req SubmitPaymentRequest
	body, err = bindMutationBody(body, &req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	postingDate, err := parsePostingDate(req.PostingDate)
	if err != nil {
		h.BadRequest(c, "posting_date must be YYYY-MM-DD or RFC3339")
		return
	}

	outcome, err := h.mutations.Execute(c.Request.Context(), mutation.Request{
		UserID:          userID,
		Endpoint:        "payment.submit",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.payments.Submit(ctx, userID, posapp.SubmitPaymentRequest{
			Profile:          req.profileName(),
			Customer:         req.Customer,
			ModeOfPayment:    req.ModeOfPayment,
			Amount:           req.Amount,
			ReferenceInvoice: req.ReferenceInvoice,
			PostingDate:      postingDate,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.MutationResult{
		RequestID: outcome.RequestID,
		Replayed:  outcome.Replayed,
		Result:    outcome.Snapshot,
	})
}

// SubmitTransferRequest moves funds between two company accounts.
type SubmitTransferRequest struct {
	RequestID      string          `json:"request_id"`
	Company        string          `json:"company" binding:"required"`
	PostingDate    string          `json:"posting_date" binding:"omitempty,posting_date"`
	ModeOfPayment  string          `json:"mode_of_payment"`
	PaidFrom       string          `json:"paid_from" binding:"required"`
	PaidTo         string          `json:"paid_to" binding:"required"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	ReceivedAmount decimal.Decimal `json:"received_amount"`
}

// SubmitTransfer posts an internal transfer between two accounts.
func (h *PaymentHandler) SubmitTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}
	var req SubmitTransferRequest
	body, err = bindMutationBody(body, &req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	postingDate, err := parsePostingDate(req.PostingDate)
	if err != nil {
		h.BadRequest(c, "posting_date must be YYYY-MM-DD or RFC3339")
		return
	}

	outcome, err := h.mutations.Execute(c.Request.Context(), mutation.Request{
		UserID:          userID,
		Endpoint:        "transfer.submit",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.payments.SubmitTransfer(ctx, userID, posapp.TransferRequest{
			Company:        req.Company,
			PostingDate:    postingDate,
			ModeOfPayment:  req.ModeOfPayment,
			PaidFrom:       req.PaidFrom,
			PaidTo:         req.PaidTo,
			PaidAmount:     req.PaidAmount,
			ReceivedAmount: req.ReceivedAmount,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.MutationResult{
		RequestID: outcome.RequestID,
		Replayed:  outcome.Replayed,
		Result:    outcome.Snapshot,
	})
}

// PaymentReferenceRequest allocates part of an outgoing payment against
// a purchase document.
type PaymentReferenceRequest struct {
	ReferenceDoctype string          `json:"reference_doctype"`
	ReferenceName    string          `json:"reference_name"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
}

// SubmitPaymentOutRequest pays a supplier.
type SubmitPaymentOutRequest struct {
	RequestID     string                    `json:"request_id"`
	Company       string                    `json:"company" binding:"required"`
	PartyType     string                    `json:"party_type"`
	Party         string                    `json:"party"`
	Supplier      string                    `json:"supplier"`
	PostingDate   string                    `json:"posting_date" binding:"omitempty,posting_date"`
	ModeOfPayment string                    `json:"mode_of_payment"`
	PaidTo        string                    `json:"paid_to"`
	Amount        decimal.Decimal           `json:"amount"`
	References    []PaymentReferenceRequest `json:"references"`
}

func (r SubmitPaymentOutRequest) partyName() string {
	if r.Party != "" {
		return r.Party
	}
	return r.Supplier
}

// SubmitPaymentOut posts an outgoing payment to a supplier.
func (h *PaymentHandler) SubmitPaymentOut(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}
	var req SubmitPaymentOutRequest
	body, err = bindMutationBody(body, &req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	postingDate, err := parsePostingDate(req.PostingDate)
	if err != nil {
		h.BadRequest(c, "posting_date must be YYYY-MM-DD or RFC3339")
		return
	}
	references := make([]pos.PaymentReference, 0, len(req.References))
	for _, ref := range req.References {
		references = append(references, pos.PaymentReference{
			ReferenceDoctype: ref.ReferenceDoctype,
			ReferenceName:    ref.ReferenceName,
			AllocatedAmount:  ref.AllocatedAmount,
		})
	}

	outcome, err := h.mutations.Execute(c.Request.Context(), mutation.Request{
		UserID:          userID,
		Endpoint:        "payment_out.submit",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.payments.SubmitPaymentOut(ctx, userID, posapp.PaymentOutRequest{
			Company:       req.Company,
			PartyType:     req.PartyType,
			Party:         req.partyName(),
			PostingDate:   postingDate,
			ModeOfPayment: req.ModeOfPayment,
			PaidTo:        req.PaidTo,
			Amount:        req.Amount,
			References:    references,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.MutationResult{
		RequestID: outcome.RequestID,
		Replayed:  outcome.Replayed,
		Result:    outcome.Snapshot,
	})
}

// Get returns a single payment entry by ID.
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
