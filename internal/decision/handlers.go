package decision

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/audit"
	"github.com/soukly/nucleus/internal/intent"
	"github.com/soukly/nucleus/internal/metrics"
	"github.com/soukly/nucleus/internal/respond"
	"github.com/soukly/nucleus/internal/traces"
	"github.com/soukly/nucleus/internal/validation"
)

// EventEmitter pushes recommendations to realtime subscribers.
type EventEmitter interface {
	Emit(operation string, data map[string]any)
}

// Handler provides the HTTP endpoint for decision recommendations.
type Handler struct {
	recommender *Recommender
	audit       audit.Logger
	events      EventEmitter
}

// NewHandler creates a decision handler.
func NewHandler(recommender *Recommender, auditLog audit.Logger) *Handler {
	return &Handler{recommender: recommender, audit: auditLog}
}

// WithEvents attaches a realtime event emitter.
func (h *Handler) WithEvents(e EventEmitter) *Handler {
	h.events = e
	return h
}

// RegisterRoutes sets up decision endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/recommend", h.Recommend)
}

// Recommend produces an advisory recommendation from the upstream signals.
// A DECLINE result is data for the caller, nothing is blocked here.
// POST /v1/advisory/recommend
func (h *Handler) Recommend(c *gin.Context) {
	start := time.Now()

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	errs := validation.Validate(
		validation.Required("requestId", req.RequestID),
		validation.MaxLength("requestId", req.RequestID, 128),
		validation.OneOf("intent", string(req.Intent),
			string(intent.TypeBuy), string(intent.TypeSell), string(intent.TypeExchange),
			string(intent.TypeTransfer), string(intent.TypeUnknown)),
		validation.Required("buyerTrust.userId", req.BuyerTrust.UserID),
		validation.Required("sellerTrust.userId", req.SellerTrust.UserID),
		validation.Required("riskAssessment.overallRisk", string(req.RiskAssessment.OverallRisk)),
	)
	if len(errs) > 0 {
		respond.Invalid(c, errs)
		return
	}

	_, span := traces.StartSpan(c.Request.Context(), "decision.Recommend",
		traces.Operation("get_recommendation"),
		traces.RequestID(req.RequestID),
	)
	defer span.End()

	rec := h.recommender.Recommend(req)
	span.SetAttributes(traces.RecommendedAction(string(rec.Action)))

	metrics.RecommendationsTotal.WithLabelValues(string(rec.Action)).Inc()
	metrics.ObserveOperation("get_recommendation", "success", time.Since(start).Seconds())

	h.audit.Log("get_recommendation",
		map[string]any{
			"requestId":   req.RequestID,
			"intent":      req.Intent,
			"buyerTrust":  req.BuyerTrust.Score,
			"sellerTrust": req.SellerTrust.Score,
			"overallRisk": req.RiskAssessment.OverallRisk,
		},
		map[string]any{
			"action":     rec.Action,
			"confidence": rec.Confidence,
			"warnings":   len(rec.Warnings),
		},
		start,
	)

	if h.events != nil {
		h.events.Emit("get_recommendation", map[string]any{
			"requestId":  rec.RequestID,
			"action":     string(rec.Action),
			"confidence": rec.Confidence,
		})
	}

	respond.OK(c, rec, start)
}
