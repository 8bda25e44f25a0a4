package handler

import (
	"strconv"
	"time"

	syncapp "github.com/erp/pos-gateway/internal/application/sync"
	"github.com/gin-gonic/gin"
)

// SyncHandler handles bootstrap and delta sync endpoints
type SyncHandler struct {
	BaseHandler
	sync *syncapp.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(sync *syncapp.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.GET("/bootstrap", h.Bootstrap)
		sync.GET("/:collection", h.Delta)
	}
}

// Bootstrap returns the initial working set for a freshly opened
// terminal: first pages of every collection plus company reference data.
func (h *SyncHandler) Bootstrap(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.sync.Bootstrap(c.Request.Context(), userID, c.Query("profile"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delta returns one page of changes for a collection since the client's
// watermark. The response's server_time is the next watermark.
func (h *SyncHandler) Delta(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "since must be RFC3339")
			return
		}
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

	page, err := h.sync.Delta(c.Request.Context(), userID, syncapp.DeltaRequest{
		Profile:    c.Query("profile"),
		Collection: c.Param("collection"),
		Since:      since,
		Search:     c.Query("search"),
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
