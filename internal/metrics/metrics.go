// Package metrics provides Prometheus instrumentation for the advisory engine.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nucleus",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nucleus",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AdvisoryOperationsTotal counts engine operations by name and outcome.
	AdvisoryOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nucleus",
			Name:      "advisory_operations_total",
			Help:      "Total advisory operations by operation name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// AdvisoryOperationDuration observes engine operation latency.
	AdvisoryOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nucleus",
			Name:      "advisory_operation_duration_seconds",
			Help:      "Advisory operation duration in seconds.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation"},
	)

	// IntentClassificationsTotal counts classifications by resolved type.
	IntentClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nucleus",
			Name:      "intent_classifications_total",
			Help:      "Total intent classifications by resolved intent type.",
		},
		[]string{"type"},
	)

	// RiskAssessmentsTotal counts assessments by resulting risk level.
	RiskAssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nucleus",
			Name:      "risk_assessments_total",
			Help:      "Total risk assessments by overall risk level.",
		},
		[]string{"level"},
	)

	// RecommendationsTotal counts recommendations by advised action.
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nucleus",
			Name:      "recommendations_total",
			Help:      "Total decision recommendations by advised action.",
		},
		[]string{"action"},
	)

	// AuditLogEntries tracks the current audit log size.
	AuditLogEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nucleus",
		Name:      "audit_log_entries",
		Help:      "Number of entries currently held in the audit log.",
	})

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nucleus",
		Name:      "active_websocket_clients",
		Help:      "Number of currently connected WebSocket clients.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AdvisoryOperationsTotal,
		AdvisoryOperationDuration,
		IntentClassificationsTotal,
		RiskAssessmentsTotal,
		RecommendationsTotal,
		AuditLogEntries,
		ActiveWebSocketClients,
	)
}

// ObserveOperation records one advisory operation's outcome and duration.
func ObserveOperation(operation, outcome string, seconds float64) {
	AdvisoryOperationsTotal.WithLabelValues(operation, outcome).Inc()
	AdvisoryOperationDuration.WithLabelValues(operation).Observe(seconds)
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
