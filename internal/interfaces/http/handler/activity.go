package handler

import (
	"time"

	activityapp "github.com/erp/pos-gateway/internal/application/activity"
	"github.com/erp/pos-gateway/internal/domain/activity"
	"github.com/gin-gonic/gin"
)

// ActivityHandler handles the terminal activity feed
type ActivityHandler struct {
	BaseHandler
	feed *activityapp.Service
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(feed *activityapp.Service) *ActivityHandler {
	return &ActivityHandler{feed: feed}
}

// RegisterRoutes registers activity routes
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activity", h.Feed)
}

// Feed returns one page of activity entries, newest first.
func (h *ActivityHandler) Feed(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "since must be RFC3339")
			return
		}
		since = parsed
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		h.BadRequest(c, "offset must be an integer")
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		h.BadRequest(c, "limit must be an integer")
		return
	}

	page, err := h.feed.Feed(c.Request.Context(), activity.Filter{
		Company:   c.Query("company"),
		Profile:   c.Query("profile"),
		Warehouse: c.Query("warehouse"),
		Territory: c.Query("territory"),
		Route:     c.Query("route"),
		Since:     since,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}
