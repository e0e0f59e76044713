package match

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/audit"
	"github.com/soukly/nucleus/internal/metrics"
	"github.com/soukly/nucleus/internal/respond"
	"github.com/soukly/nucleus/internal/validation"
)

// maxCandidates bounds one matching call.
const maxCandidates = 500

// Handler provides HTTP endpoints for user matching. The active model
// snapshot is swapped atomically on retrain; in-flight requests finish
// against the snapshot they started with.
type Handler struct {
	mu      sync.RWMutex
	matcher *Matcher
	audit   audit.Logger
}

// NewHandler creates a match handler running the given model.
func NewHandler(model Model, auditLog audit.Logger) *Handler {
	return &Handler{matcher: NewMatcher(model), audit: auditLog}
}

// RegisterRoutes sets up matching endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/match/users", h.MatchUsers)
	r.GET("/match/model", h.GetModel)
	r.POST("/match/model/retrain", h.RetrainModel)
}

// MatchUsersRequest is the body for POST /match/users. Candidate profiles
// are supplied by the caller; the engine performs no lookups of its own.
type MatchUsersRequest struct {
	RequesterID string        `json:"requesterId"`
	Criteria    Criteria      `json:"criteria"`
	Limit       int           `json:"limit"`
	Requester   UserProfile   `json:"requester"`
	Candidates  []UserProfile `json:"candidates"`
}

// MatchUsersResponse carries the ranked candidates and the model version
// that produced them.
type MatchUsersResponse struct {
	Matches      []Candidate `json:"matches"`
	Count        int         `json:"count"`
	ModelVersion int         `json:"modelVersion"`
}

// MatchUsers ranks the supplied candidates for the requester.
// POST /v1/advisory/match/users
func (h *Handler) MatchUsers(c *gin.Context) {
	start := time.Now()

	var req MatchUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	errs := validation.Validate(
		validation.Required("requesterId", req.RequesterID),
		validation.MaxLength("requesterId", req.RequesterID, 128),
		func() *validation.ValidationError {
			if len(req.Candidates) > maxCandidates {
				return &validation.ValidationError{Field: "candidates", Message: "too many candidates"}
			}
			return nil
		},
		func() *validation.ValidationError {
			if req.Limit < 0 {
				return &validation.ValidationError{Field: "limit", Message: "must not be negative"}
			}
			return nil
		},
	)
	if len(errs) > 0 {
		respond.Invalid(c, errs)
		return
	}

	h.mu.RLock()
	matcher := h.matcher
	h.mu.RUnlock()

	matches := matcher.FindMatches(Request{
		RequesterID: req.RequesterID,
		Criteria:    req.Criteria,
		Limit:       req.Limit,
	}, req.Requester, req.Candidates)

	metrics.ObserveOperation("match_users", "success", time.Since(start).Seconds())

	h.audit.Log("match_users",
		map[string]any{
			"requesterId": req.RequesterID,
			"candidates":  len(req.Candidates),
			"limit":       req.Limit,
		},
		map[string]any{
			"matches":      len(matches),
			"modelVersion": matcher.Model().Version,
		},
		start,
	)

	respond.OK(c, MatchUsersResponse{
		Matches:      matches,
		Count:        len(matches),
		ModelVersion: matcher.Model().Version,
	}, start)
}

// GetModel returns the active weight model snapshot.
// GET /v1/advisory/match/model
func (h *Handler) GetModel(c *gin.Context) {
	h.mu.RLock()
	model := h.matcher.Model()
	h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"model": model})
}

// RetrainRequest is the body for POST /match/model/retrain.
type RetrainRequest struct {
	Weights Weights `json:"weights"`
}

// RetrainModel produces a new model snapshot from the supplied weights and
// makes it the active one. Rejected weights leave the current model in
// place.
// POST /v1/advisory/match/model/retrain
func (h *Handler) RetrainModel(c *gin.Context) {
	start := time.Now()

	var req RetrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	h.mu.Lock()
	next, err := h.matcher.Model().Retrain(req.Weights)
	if err == nil {
		h.matcher = NewMatcher(next)
	}
	h.mu.Unlock()

	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_weights", err.Error())
		return
	}

	metrics.ObserveOperation("retrain_model", "success", time.Since(start).Seconds())

	h.audit.Log("retrain_model",
		map[string]any{
			"trust":        req.Weights.Trust,
			"location":     req.Weights.Location,
			"history":      req.Weights.History,
			"preference":   req.Weights.Preference,
			"availability": req.Weights.Availability,
		},
		map[string]any{"modelVersion": next.Version},
		start,
	)

	respond.OK(c, gin.H{"model": next}, start)
}
