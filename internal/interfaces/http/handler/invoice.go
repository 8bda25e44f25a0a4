package handler

import (
	"context"

	"github.com/erp/pos-gateway/internal/application/mutation"
	posapp "github.com/erp/pos-gateway/internal/application/pos"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles sales invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices  *posapp.InvoiceService
	mutations *mutation.Controller
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *posapp.InvoiceService, mutations *mutation.Controller) *InvoiceHandler {
	return &InvoiceHandler{
		invoices:  invoices,
		mutations: mutations,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Submit)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.GET("/:id", h.Get)
	}
}

// SubmitInvoiceRequest submits a POS sale or return.
type SubmitInvoiceRequest struct {
	RequestID     string               `json:"request_id"`
	Profile       string               `json:"profile"`
	POSProfile    string               `json:"pos_profile"`
	Customer      string               `json:"customer" binding:"required"`
	IsReturn      bool                 `json:"is_return"`
	ReturnAgainst string               `json:"return_against"`
	PostingDate   string               `json:"posting_date" binding:"omitempty,posting_date"`
	Items         []pos.InvoiceItem    `json:"items" binding:"required,min=1"`
	Payments      []pos.InvoicePayment `json:"payments"`
}

func (r SubmitInvoiceRequest) profileName() string {
	if r.Profile != "" {
		return r.Profile
	}
	return r.POSProfile
}

// CancelInvoiceRequest cancels a submitted invoice by ID.
type CancelInvoiceRequest struct {
	RequestID string `json:"request_id"`
}

// Submit creates and submits a sales invoice under the user's open shift.
func (h *InvoiceHandler) Submit(c *gin.Context) {
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
	var req SubmitInvoiceRequest
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
		Endpoint:        "invoice.submit",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.invoices.Submit(ctx, userID, posapp.SubmitInvoiceRequest{
			Profile:       req.profileName(),
			Customer:      req.Customer,
			IsReturn:      req.IsReturn,
			ReturnAgainst: req.ReturnAgainst,
			PostingDate:   postingDate,
			Items:         req.Items,
			Payments:      req.Payments,
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

// Cancel cancels a submitted invoice.
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}
	invoiceID := c.Param("id")

	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}
	var req CancelInvoiceRequest
	if len(body) > 0 {
		body, err = bindMutationBody(body, &req)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	outcome, err := h.mutations.Execute(c.Request.Context(), mutation.Request{
		UserID:          userID,
		Endpoint:        "invoice.cancel:" + invoiceID,
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.invoices.Cancel(ctx, userID, invoiceID)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MutationResult{
		RequestID: outcome.RequestID,
		Replayed:  outcome.Replayed,
		Result:    outcome.Snapshot,
	})
}

// Get returns a single invoice by ID.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
