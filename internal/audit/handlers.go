package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/validation"
)

// Handler provides read access to the audit trail.
type Handler struct {
	log Logger
}

// NewHandler creates an audit handler.
func NewHandler(log Logger) *Handler {
	return &Handler{log: log}
}

// RegisterRoutes sets up audit endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit", h.GetEntries)
	r.GET("/audit/stats", h.GetStats)
}

// GetEntries returns recent audit entries, newest first, optionally
// filtered by operation.
// GET /v1/advisory/audit?operation=&limit=
func (h *Handler) GetEntries(c *gin.Context) {
	limit := validation.LimitParam(c.Query("limit"), 100, 1000)

	var entries []Entry
	if op := c.Query("operation"); op != "" {
		entries = h.log.ByOperation(op, limit)
	} else {
		entries = h.log.Recent(limit)
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetStats returns aggregate audit trail statistics.
// GET /v1/advisory/audit/stats
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.log.Stats()})
}
