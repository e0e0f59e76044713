// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/audit"
	"github.com/soukly/nucleus/internal/config"
	"github.com/soukly/nucleus/internal/decision"
	"github.com/soukly/nucleus/internal/health"
	"github.com/soukly/nucleus/internal/intent"
	"github.com/soukly/nucleus/internal/logging"
	"github.com/soukly/nucleus/internal/match"
	"github.com/soukly/nucleus/internal/metrics"
	"github.com/soukly/nucleus/internal/ratelimit"
	"github.com/soukly/nucleus/internal/realtime"
	"github.com/soukly/nucleus/internal/risk"
	"github.com/soukly/nucleus/internal/security"
	"github.com/soukly/nucleus/internal/trust"
	"github.com/soukly/nucleus/internal/validation"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and the advisory engine components.
type Server struct {
	cfg         *config.Config
	classifier  *intent.Classifier
	scorer      *trust.Scorer
	assessor    *risk.Assessor
	recommender *decision.Recommender
	matchH      *match.Handler
	auditLog    audit.Logger
	healthReg   *health.Registry
	realtimeHub *realtime.Hub
	rateLimiter *ratelimit.Limiter
	router      *gin.Engine
	httpSrv     *http.Server
	logger      *slog.Logger
	cancelRun   context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAuditLogger sets a custom audit logger (for testing)
func WithAuditLogger(l audit.Logger) Option {
	return func(s *Server) {
		s.auditLog = l
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	// Apply options first (may set audit logger/logger)
	for _, opt := range opts {
		opt(s)
	}

	// Engine components. All pure and safe for concurrent use; the audit
	// log is the only shared mutable state.
	s.classifier = intent.NewClassifier()
	s.scorer = trust.NewScorer()
	s.assessor = risk.NewAssessor()
	s.recommender = decision.NewRecommender()
	if s.auditLog == nil {
		s.auditLog = audit.NewMemoryLogger(cfg.AuditLogCap, cfg.EngineVersion)
	}

	// Realtime hub for WebSocket streaming of advisory results
	s.realtimeHub = realtime.NewHub(s.logger)

	s.healthReg = health.NewRegistry()
	s.registerHealthChecks()

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS
	s.router.Use(security.CORSMiddleware(splitOrigins(s.cfg.AllowedOrigins)))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	rlCfg := ratelimit.DefaultConfig()
	rlCfg.RequestsPerMinute = s.cfg.RateLimitPerMin
	s.rateLimiter = ratelimit.New(rlCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// WebSocket for real-time streaming of advisory results
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	// API info
	s.router.GET("/", s.infoHandler)

	// Advisory API group. Every engine operation lives here; all of them
	// return advice as data, nothing is ever blocked or enforced.
	adv := s.router.Group("/v1/advisory")

	emitter := &hubEmitter{hub: s.realtimeHub}

	intent.NewHandler(s.classifier, s.auditLog).WithEvents(emitter).RegisterRoutes(adv)
	trust.NewHandler(s.scorer, s.auditLog).RegisterRoutes(adv)
	risk.NewHandler(s.assessor, s.auditLog).WithEvents(emitter).RegisterRoutes(adv)
	decision.NewHandler(s.recommender, s.auditLog).WithEvents(emitter).RegisterRoutes(adv)

	s.matchH = match.NewHandler(match.DefaultModel(), s.auditLog)
	s.matchH.RegisterRoutes(adv)

	audit.NewHandler(s.auditLog).RegisterRoutes(adv)
}

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Nucleus",
		"description": "Deterministic marketplace advisory engine",
		"version":     s.cfg.EngineVersion,
		"advisory":    true,
	})
}

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

// registerHealthChecks registers a canned-input self-check per engine
// component. Readiness reflects each component actually producing its
// expected output, not just process liveness.
func (s *Server) registerHealthChecks() {
	s.healthReg.Register("intent_classifier", func(ctx context.Context) health.Status {
		got := s.classifier.Classify(map[string]string{"action_keyword": "purchase"})
		if got.Type != intent.TypeBuy {
			return health.Status{Name: "intent_classifier", Healthy: false,
				Detail: fmt.Sprintf("canned input classified as %s", got.Type)}
		}
		return health.Status{Name: "intent_classifier", Healthy: true}
	})

	s.healthReg.Register("trust_scorer", func(ctx context.Context) health.Status {
		got := s.scorer.Compute(trust.Input{UserID: "healthcheck"})
		if got.Score < 0 || got.Score > 100 || got.Level == "" {
			return health.Status{Name: "trust_scorer", Healthy: false,
				Detail: fmt.Sprintf("score %d level %q", got.Score, got.Level)}
		}
		return health.Status{Name: "trust_scorer", Healthy: true}
	})

	s.healthReg.Register("risk_assessor", func(ctx context.Context) health.Status {
		got := s.assessor.Assess(risk.Request{TransactionID: "healthcheck", Amount: 1, Currency: "USD"}, risk.Context{})
		if len(got.Factors) != 7 || got.OverallRisk == "" {
			return health.Status{Name: "risk_assessor", Healthy: false,
				Detail: fmt.Sprintf("%d factors, risk %q", len(got.Factors), got.OverallRisk)}
		}
		return health.Status{Name: "risk_assessor", Healthy: true}
	})

	s.healthReg.Register("user_matcher", func(ctx context.Context) health.Status {
		model := match.DefaultModel()
		got := match.NewMatcher(model).FindMatches(match.Request{RequesterID: "healthcheck"}, match.UserProfile{}, nil)
		if len(got) != 0 {
			return health.Status{Name: "user_matcher", Healthy: false,
				Detail: fmt.Sprintf("%d matches from empty pool", len(got))}
		}
		return health.Status{Name: "user_matcher", Healthy: true}
	})

	s.healthReg.Register("decision_recommender", func(ctx context.Context) health.Status {
		got := s.recommender.Recommend(decision.Request{
			RequestID:      "healthcheck",
			Intent:         intent.TypeBuy,
			BuyerTrust:     trust.Score{UserID: "a", Score: 70, Level: trust.LevelTrusted},
			SellerTrust:    trust.Score{UserID: "b", Score: 70, Level: trust.LevelTrusted},
			RiskAssessment: risk.Assessment{OverallRisk: risk.LevelLow},
		})
		if got.Action == "" || got.Confidence < 0.3 || got.Confidence > 0.99 {
			return health.Status{Name: "decision_recommender", Healthy: false,
				Detail: fmt.Sprintf("action %q confidence %.2f", got.Action, got.Confidence)}
		}
		return health.Status{Name: "decision_recommender", Healthy: true}
	})

	s.healthReg.Register("audit_logger", func(ctx context.Context) health.Status {
		stats := s.auditLog.Stats()
		if stats.TotalEntries < 0 {
			return health.Status{Name: "audit_logger", Healthy: false}
		}
		return health.Status{Name: "audit_logger", Healthy: true}
	})
}

// HealthResponse for health check endpoints
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Checks    []health.Status `json:"checks,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, checks := s.healthReg.CheckAll(ctx)

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   s.cfg.EngineVersion,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	// Cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"env", s.cfg.Env,
			"version", s.cfg.EngineVersion,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.realtimeHub.Run(runCtx)

	// Keep the audit log size gauge current
	go s.trackAuditSize(runCtx)

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// trackAuditSize publishes the audit log entry count every 15 seconds.
func (s *Server) trackAuditSize(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.AuditLogEntries.Set(float64(s.auditLog.Stats().TotalEntries))
		}
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for background goroutines (hub, gauges)
	if s.cancelRun != nil {
		s.cancelRun()
	}

	// Give load balancers time to stop sending traffic
	time.Sleep(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

// hubEmitter adapts realtime.Hub to the handler packages' event emitters.
type hubEmitter struct {
	hub *realtime.Hub
}

func (e *hubEmitter) Emit(operation string, data map[string]any) {
	if e.hub != nil {
		e.hub.BroadcastOperation(operation, data)
	}
}
