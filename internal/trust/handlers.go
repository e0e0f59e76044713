package trust

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/audit"
	"github.com/soukly/nucleus/internal/metrics"
	"github.com/soukly/nucleus/internal/respond"
	"github.com/soukly/nucleus/internal/validation"
)

// Handler provides HTTP endpoints for trust scoring.
type Handler struct {
	scorer *Scorer
	audit  audit.Logger
}

// NewHandler creates a trust handler.
func NewHandler(scorer *Scorer, auditLog audit.Logger) *Handler {
	return &Handler{scorer: scorer, audit: auditLog}
}

// RegisterRoutes sets up trust endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/trust/compute", h.ComputeTrust)
	r.POST("/trust/compare", h.CompareTrust)
}

// ComputeTrust computes a trust score from party attributes.
// POST /v1/advisory/trust/compute
func (h *Handler) ComputeTrust(c *gin.Context) {
	start := time.Now()

	var input Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	if errs := validateInput("", input); len(errs) > 0 {
		respond.Invalid(c, errs)
		return
	}

	score := h.scorer.Compute(input)

	metrics.ObserveOperation("compute_trust", "success", time.Since(start).Seconds())

	h.audit.Log("compute_trust",
		map[string]any{"userId": input.UserID},
		map[string]any{"userId": score.UserID, "score": score.Score, "level": score.Level},
		start,
	)

	respond.OK(c, score, start)
}

// CompareRequest is the body for POST /trust/compare. Both parties'
// attributes are supplied; scores are computed fresh so the comparison
// never runs on stale or fabricated numbers.
type CompareRequest struct {
	A Input `json:"a"`
	B Input `json:"b"`
}

// CompareResponse pairs the two computed scores with their comparison.
type CompareResponse struct {
	A          Score      `json:"a"`
	B          Score      `json:"b"`
	Comparison Comparison `json:"comparison"`
}

// CompareTrust computes and compares two parties' trust scores.
// POST /v1/advisory/trust/compare
func (h *Handler) CompareTrust(c *gin.Context) {
	start := time.Now()

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	errs := append(validateInput("a.", req.A), validateInput("b.", req.B)...)
	if len(errs) > 0 {
		respond.Invalid(c, errs)
		return
	}

	a := h.scorer.Compute(req.A)
	b := h.scorer.Compute(req.B)
	cmp := h.scorer.Compare(a, b)

	metrics.ObserveOperation("compare_trust", "success", time.Since(start).Seconds())

	h.audit.Log("compare_trust",
		map[string]any{"a": req.A.UserID, "b": req.B.UserID},
		map[string]any{
			"aScore":         a.Score,
			"bScore":         b.Score,
			"compatible":     cmp.Compatible,
			"riskDelta":      cmp.RiskDelta,
			"recommendation": cmp.Recommendation,
		},
		start,
	)

	respond.OK(c, CompareResponse{A: a, B: b, Comparison: cmp}, start)
}

func validateInput(prefix string, input Input) validation.ValidationErrors {
	return validation.Validate(
		validation.Required(prefix+"userId", input.UserID),
		validation.MaxLength(prefix+"userId", input.UserID, 128),
		validation.InRange(prefix+"averageRating", input.AverageRating, 0, 5),
		validation.InRange(prefix+"responseRate", input.ResponseRate, 0, 1),
		nonNegative(prefix+"totalTransactions", input.TotalTransactions),
		nonNegative(prefix+"successfulTransactions", input.SuccessfulTransactions),
		nonNegative(prefix+"disputesRaised", input.DisputesRaised),
		nonNegative(prefix+"disputesLost", input.DisputesLost),
	)
}

func nonNegative(field string, value int) func() *validation.ValidationError {
	return func() *validation.ValidationError {
		if value < 0 {
			return &validation.ValidationError{Field: field, Message: "must not be negative"}
		}
		return nil
	}
}
