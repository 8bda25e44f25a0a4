package handler

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/application/mutation"
	posapp "github.com/erp/pos-gateway/internal/application/pos"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SessionHandler handles shift lifecycle endpoints
type SessionHandler struct {
	BaseHandler
	sessions  *posapp.SessionService
	mutations *mutation.Controller
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *posapp.SessionService, mutations *mutation.Controller) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		mutations: mutations,
	}
}

// RegisterRoutes registers shift routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shifts := rg.Group("/shifts")
	{
		shifts.POST("/open", h.Open)
		shifts.POST("/close", h.Close)
		shifts.GET("/current", h.Current)
	}
}

// OpenShiftRequest opens or resumes a shift. pos_profile is accepted as
// an alias for profile.
type OpenShiftRequest struct {
	RequestID      string               `json:"request_id"`
	Profile        string               `json:"profile"`
	POSProfile     string               `json:"pos_profile"`
	PostingDate    string               `json:"posting_date" binding:"omitempty,posting_date"`
	BalanceDetails []pos.OpeningBalance `json:"balance_details"`
}

func (r OpenShiftRequest) profileName() string {
	if r.Profile != "" {
		return r.Profile
	}
	return r.POSProfile
}

// CloseShiftRequest closes an open shift.
type CloseShiftRequest struct {
	RequestID      string               `json:"request_id"`
	ShiftID        string               `json:"shift_id" binding:"required"`
	BalanceDetails []pos.OpeningBalance `json:"balance_details"`
}

// Open opens a new shift, or resumes the user's already-open one.
func (h *SessionHandler) Open(c *gin.Context) {
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
	var req OpenShiftRequest
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
		Endpoint:        "shift.open",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.sessions.Open(ctx, userID, posapp.OpenShiftRequest{
			Profile:         req.profileName(),
			PostingDate:     postingDate,
			OpeningBalances: req.BalanceDetails,
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

// Close closes the user's shift with the counted balances.
func (h *SessionHandler) Close(c *gin.Context) {
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
	var req CloseShiftRequest
	body, err = bindMutationBody(body, &req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	outcome, err := h.mutations.Execute(c.Request.Context(), mutation.Request{
		UserID:          userID,
		Endpoint:        "shift.close",
		ClientRequestID: clientRequestID(c, req.RequestID),
		Payload:         body,
	}, func(ctx context.Context) (any, error) {
		return h.sessions.Close(ctx, userID, posapp.CloseShiftRequest{
			ShiftID:         req.ShiftID,
			ClosingBalances: req.BalanceDetails,
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

// Current returns the user's open shift for the profile, if any.
func (h *SessionHandler) Current(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	shift, err := h.sessions.Current(c.Request.Context(), userID, c.Query("profile"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "no open shift")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, shift)
}
