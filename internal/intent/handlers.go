package intent

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/audit"
	"github.com/soukly/nucleus/internal/metrics"
	"github.com/soukly/nucleus/internal/respond"
	"github.com/soukly/nucleus/internal/validation"
)

// EventEmitter pushes classification results to realtime subscribers.
type EventEmitter interface {
	Emit(operation string, data map[string]any)
}

// Handler provides HTTP endpoints for intent classification.
type Handler struct {
	classifier *Classifier
	audit      audit.Logger
	events     EventEmitter
}

// NewHandler creates an intent handler.
func NewHandler(classifier *Classifier, auditLog audit.Logger) *Handler {
	return &Handler{classifier: classifier, audit: auditLog}
}

// WithEvents attaches a realtime event emitter.
func (h *Handler) WithEvents(e EventEmitter) *Handler {
	h.events = e
	return h
}

// RegisterRoutes sets up intent endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/intent/classify", h.ClassifyIntent)
}

// ClassifyRequest is the body for POST /intent/classify.
type ClassifyRequest struct {
	UserID  string            `json:"userId"`
	Signals map[string]string `json:"signals"`
}

// ClassifyIntent classifies a bag of marketplace signals.
// POST /v1/advisory/intent/classify
func (h *Handler) ClassifyIntent(c *gin.Context) {
	start := time.Now()

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}

	if len(req.Signals) == 0 {
		respond.Invalid(c, validation.ValidationErrors{
			{Field: "signals", Message: "at least one signal is required"},
		})
		return
	}
	for source, value := range req.Signals {
		if len(value) > validation.MaxStringLength {
			respond.Invalid(c, validation.ValidationErrors{
				{Field: "signals." + source, Message: "value too long"},
			})
			return
		}
	}

	result := h.classifier.Classify(req.Signals)

	metrics.IntentClassificationsTotal.WithLabelValues(string(result.Type)).Inc()
	metrics.ObserveOperation("classify_intent", "success", time.Since(start).Seconds())

	h.audit.Log("classify_intent",
		map[string]any{"userId": req.UserID, "signals": req.Signals},
		map[string]any{
			"type":            result.Type,
			"confidence":      result.Confidence,
			"confidenceLevel": result.ConfidenceLevel,
		},
		start,
	)

	if h.events != nil {
		h.events.Emit("classify_intent", map[string]any{
			"userId":     req.UserID,
			"type":       string(result.Type),
			"confidence": result.Confidence,
		})
	}

	respond.OK(c, result, start)
}
