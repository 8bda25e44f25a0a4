package handler

import (
	"context"

	"github.com/erp/pos-gateway/internal/application/mutation"
	posapp "github.com/erp/pos-gateway/internal/application/pos"
	"github.com/erp/pos-gateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customers *posapp.CustomerService
	mutations *mutation.Controller
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers *posapp.CustomerService, mutations *mutation.Controller) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		mutations: mutations,
	}
}

// RegisterRoutes registers customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.Upsert)
		customers.GET("/:id", h.Get)
	}
}

// UpsertCustomerRequest creates or updates a customer. Matching falls
// back from id to mobile to name; a fresh record needs at least a name.
type UpsertCustomerRequest struct {
	RequestID     string           `json:"request_id"`
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Mobile        string           `json:"mobile"`
	CustomerGroup string           `json:"customer_group"`
	Territory     string           `json:"territory"`
	Route         string           `json:"route"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
}

// Upsert creates or updates a customer record.
func (h *CustomerHandler) Upsert(c *gin.Context) {
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
	var req UpsertCustomerRequest
	body, err = bindMutationBody(body, &req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	outcome, err := h.mutations.Execute(c.Request.Context(), mutation.Request{
		UserID:          userID,
		Endpoint:        "customer.upsert",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.customers.Upsert(ctx, userID, posapp.UpsertCustomerRequest{
			ID:            req.ID,
			Name:          req.Name,
			Mobile:        req.Mobile,
			CustomerGroup: req.CustomerGroup,
			Territory:     req.Territory,
			Route:         req.Route,
			CreditLimit:   req.CreditLimit,
		})
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

// Get returns a single customer by ID.
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}
