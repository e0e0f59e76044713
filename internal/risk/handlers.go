package risk

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/audit"
	"github.com/soukly/nucleus/internal/metrics"
	"github.com/soukly/nucleus/internal/respond"
	"github.com/soukly/nucleus/internal/traces"
	"github.com/soukly/nucleus/internal/validation"
)

// EventEmitter pushes assessments to realtime subscribers.
type EventEmitter interface {
	Emit(operation string, data map[string]any)
}

// Handler provides HTTP endpoints for risk assessment.
type Handler struct {
	assessor *Assessor
	audit    audit.Logger
	events   EventEmitter
}

// NewHandler creates a risk handler.
func NewHandler(assessor *Assessor, auditLog audit.Logger) *Handler {
	return &Handler{assessor: assessor, audit: auditLog}
}

// WithEvents attaches a realtime event emitter.
func (h *Handler) WithEvents(e EventEmitter) *Handler {
	h.events = e
	return h
}

// RegisterRoutes sets up risk endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/risk/assess", h.AssessRisk)
}

// AssessRequest is the body for POST /risk/assess. The transaction under
// assessment plus every contextual signal the assessor needs, supplied by
// the caller in one shot.
type AssessRequest struct {
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	ItemCategory  string  `json:"itemCategory"`
	Context       Context `json:"context"`
}

// AssessRisk evaluates a prospective transaction against the seven risk
// factors. The result is advisory: a CRITICAL assessment is returned as
// data, never enforced.
// POST /v1/advisory/risk/assess
func (h *Handler) AssessRisk(c *gin.Context) {
	start := time.Now()

	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	errs := validation.Validate(
		validation.Required("transactionId", req.TransactionID),
		validation.MaxLength("transactionId", req.TransactionID, 128),
		validation.Positive("amount", req.Amount),
		validation.Required("context.buyerTrust.userId", req.Context.BuyerTrust.UserID),
		validation.Required("context.sellerTrust.userId", req.Context.SellerTrust.UserID),
	)
	if len(errs) > 0 {
		respond.Invalid(c, errs)
		return
	}

	_, span := traces.StartSpan(c.Request.Context(), "risk.Assess",
		traces.Operation("assess_risk"),
		traces.TransactionID(req.TransactionID),
	)
	defer span.End()

	assessment := h.assessor.Assess(Request{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ItemCategory:  req.ItemCategory,
	}, req.Context)

	span.SetAttributes(traces.RiskLevel(string(assessment.OverallRisk)))

	metrics.RiskAssessmentsTotal.WithLabelValues(string(assessment.OverallRisk)).Inc()
	metrics.ObserveOperation("assess_risk", "success", time.Since(start).Seconds())

	h.audit.Log("assess_risk",
		map[string]any{
			"transactionId": req.TransactionID,
			"amount":        req.Amount,
			"currency":      req.Currency,
			"itemCategory":  req.ItemCategory,
		},
		map[string]any{
			"overallRisk": assessment.OverallRisk,
			"riskScore":   assessment.RiskScore,
			"flags":       len(assessment.Flags),
		},
		start,
	)

	if h.events != nil {
		h.events.Emit("assess_risk", map[string]any{
			"transactionId": assessment.TransactionID,
			"overallRisk":   string(assessment.OverallRisk),
			"riskScore":     float64(assessment.RiskScore),
		})
	}

	respond.OK(c, assessment, start)
}
