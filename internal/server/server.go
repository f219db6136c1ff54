// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/kahinlabs/kahinadmin/internal/audit"
	"github.com/kahinlabs/kahinadmin/internal/config"
	"github.com/kahinlabs/kahinadmin/internal/dashboard"
	"github.com/kahinlabs/kahinadmin/internal/deposits"
	"github.com/kahinlabs/kahinadmin/internal/disputes"
	"github.com/kahinlabs/kahinadmin/internal/idgen"
	"github.com/kahinlabs/kahinadmin/internal/listing"
	"github.com/kahinlabs/kahinadmin/internal/logging"
	"github.com/kahinlabs/kahinadmin/internal/markethealth"
	"github.com/kahinlabs/kahinadmin/internal/markets"
	"github.com/kahinlabs/kahinadmin/internal/metrics"
	"github.com/kahinlabs/kahinadmin/internal/nav"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/ratelimit"
	"github.com/kahinlabs/kahinadmin/internal/realtime"
	"github.com/kahinlabs/kahinadmin/internal/resolution"
	"github.com/kahinlabs/kahinadmin/internal/security"
	"github.com/kahinlabs/kahinadmin/internal/session"
	"github.com/kahinlabs/kahinadmin/internal/traces"
	"github.com/kahinlabs/kahinadmin/internal/transactions"
	"github.com/kahinlabs/kahinadmin/internal/treasury"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
	"github.com/kahinlabs/kahinadmin/internal/users"
	"github.com/kahinlabs/kahinadmin/internal/validation"
	"github.com/kahinlabs/kahinadmin/internal/withdrawals"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	db          *sql.DB // nil when using in-memory stores
	upstream    *upstream.Client
	manager     *session.Manager
	cache       *querycache.Cache
	hub         *realtime.Hub
	trail       *audit.Trail
	rateLimiter *ratelimit.Limiter
	router      *gin.Engine
	httpSrv     *http.Server

	cancelRunCtx   context.CancelFunc // cancels background goroutines started in Run
	shutdownTraces func(context.Context) error

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

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()

	// Session and audit storage (Postgres if DATABASE_URL set, otherwise in-memory)
	var sessionStore session.Store
	var auditStore audit.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		pgSessions := session.NewPostgresStore(db)
		if err := pgSessions.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate session store", "error", err)
		}
		sessionStore = pgSessions
		auditStore = audit.NewPostgresStore(db)
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))
	} else {
		sessionStore = session.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
		s.logger.Info("using in-memory storage (session will not survive restarts)")
	}

	// Upstream platform client. The manager supplies the token on every
	// request; the adapter below breaks the import cycle between the two.
	s.upstream = upstream.New(cfg.UpstreamURL, cfg.UpstreamTimeout)
	s.manager = session.NewManager(sessionStore, &authAPIAdapter{s.upstream}, s.logger)
	s.upstream.SetTokenSource(s.manager)

	s.hub = realtime.NewHub(s.logger)
	s.cache = querycache.New(cfg.CacheTTL,
		querycache.WithLogger(s.logger),
		querycache.WithNotifier(s.hub.BroadcastInvalidation),
	)
	s.trail = audit.NewTrail(auditStore, s.logger)

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

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
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
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS restricted to the console frontend origins
	s.router.Use(security.CORSMiddleware(s.cfg.AllowedOrigins))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	rlCfg := ratelimit.DefaultConfig()
	if s.cfg.RateLimitRPM > 0 {
		rlCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	}
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
			requestID = idgen.RequestID()
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

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

	// Auth endpoints (public; the gate itself cannot sit behind the gate)
	authHandler := session.NewHandler(s.manager)
	s.router.POST("/login", s.withSessionBroadcast(authHandler.Login))
	s.router.POST("/logout", s.withSessionBroadcast(authHandler.Logout))
	s.router.GET("/session", authHandler.Session)

	// Everything operational lives behind the session guard
	console := s.router.Group("/console")
	console.Use(session.Guard(s.manager))

	console.GET("/nav", nav.Handler)
	console.GET("/ws", func(c *gin.Context) {
		s.hub.HandleWebSocket(c.Writer, c.Request)
	})

	lists := listing.NewState()

	dashboardHandler := dashboard.NewHandler(s.upstream, s.cache)
	console.GET("/dashboard", dashboardHandler.Stats)

	marketHandler := markets.NewHandler(s.upstream, s.cache, s.trail, lists)
	console.GET("/markets", marketHandler.List)
	console.POST("/markets", marketHandler.Create)
	console.PUT("/markets/:id", marketHandler.Update)
	console.DELETE("/markets/:id", marketHandler.Delete)
	console.POST("/markets/:id/close", marketHandler.Close)

	resolutionHandler := resolution.NewHandler(s.upstream, s.cache, s.trail)
	console.GET("/resolution/markets", resolutionHandler.List)
	console.GET("/resolution/scheduled", resolutionHandler.Scheduled)
	console.POST("/resolution/:id/preview", resolutionHandler.Preview)
	console.POST("/resolution/:id/resolve", resolutionHandler.Submit)
	console.POST("/resolution/:id/schedule", resolutionHandler.Schedule)

	marketHealthHandler := markethealth.NewHandler(s.upstream, s.cache, s.trail)
	console.GET("/market-health/low-liquidity", marketHealthHandler.LowLiquidity)
	console.GET("/market-health/paused", marketHealthHandler.Paused)
	console.POST("/market-health/:id/pause", marketHealthHandler.Pause)
	console.POST("/market-health/:id/resume", marketHealthHandler.Resume)

	userHandler := users.NewHandler(s.upstream, s.cache, s.trail, lists)
	console.GET("/users", userHandler.List)
	console.GET("/users/:id/balance-history", userHandler.BalanceHistory)
	console.POST("/users/:id/balance/adjust", userHandler.AdjustBalance)
	console.POST("/users/:id/balance/freeze", userHandler.Freeze)
	console.POST("/users/:id/balance/unfreeze", userHandler.Unfreeze)
	console.POST("/users/:id/promote", userHandler.Promote)
	console.POST("/users/:id/demote", userHandler.Demote)

	depositHandler := deposits.NewHandler(s.upstream, s.cache, s.trail, lists)
	console.GET("/deposits", depositHandler.List)
	console.POST("/deposits", depositHandler.Create)
	console.POST("/deposits/:id/verify", depositHandler.Verify)
	console.POST("/deposits/:id/reject", depositHandler.Reject)

	withdrawalHandler := withdrawals.NewHandler(s.upstream, s.cache, s.trail, lists)
	console.GET("/withdrawals", withdrawalHandler.List)
	console.POST("/withdrawals/:id/approve", withdrawalHandler.Approve)
	console.POST("/withdrawals/:id/reject", withdrawalHandler.Reject)

	disputeHandler := disputes.NewHandler(s.upstream, s.cache, s.trail, lists)
	console.GET("/disputes", disputeHandler.List)
	console.GET("/disputes/stats", disputeHandler.Stats)
	console.PATCH("/disputes/:id/status", disputeHandler.UpdateStatus)
	console.PATCH("/disputes/:id/priority", disputeHandler.UpdatePriority)

	treasuryHandler := treasury.NewHandler(s.upstream, s.cache)
	console.GET("/treasury/overview", treasuryHandler.Overview)
	console.GET("/treasury/liquidity", treasuryHandler.Liquidity)
	console.GET("/treasury/negative-balances", treasuryHandler.NegativeBalances)
	console.GET("/treasury/top-holders", treasuryHandler.TopHolders)

	txHandler := transactions.NewHandler(s.upstream, s.cache, lists)
	console.GET("/transactions", txHandler.List)
	console.GET("/transactions/large", txHandler.Large)

	auditHandler := audit.NewHandler(s.trail)
	console.GET("/audit", auditHandler.List)
}

// withSessionBroadcast pushes the post-handler session state to WebSocket
// clients so every open console tab reacts to a login or logout at once.
func (s *Server) withSessionBroadcast(handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		before := s.manager.State()
		handler(c)
		if after := s.manager.State(); after != before {
			s.hub.BroadcastSessionState(after.String())
			s.cache.Clear()
		}
	}
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// HealthResponse for health check endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
	Realtime  map[string]any    `json:"realtime,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	checks := make(map[string]string)

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			checks["database"] = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	}
	checks["session"] = s.manager.State().String()

	status := "healthy"
	httpStatus := http.StatusOK
	if checks["database"] == "unhealthy" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    checks,
		Realtime:  s.hub.Stats(),
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
	s.cancelRunCtx = cancel

	// Tracing (no-op when no endpoint is configured)
	shutdownTraces, err := traces.Init(runCtx, s.cfg.OTLPEndpoint, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize tracing", "error", err)
	} else {
		s.shutdownTraces = shutdownTraces
	}

	// Restore the operator session before accepting traffic
	s.manager.Initialize(runCtx)
	s.logger.Info("session hydrated", "state", s.manager.State().String())

	go s.hub.Run(runCtx)

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"upstream", s.cfg.UpstreamURL,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	s.ready.Store(true)

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

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for background goroutines (hub, traces exporter)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	if s.shutdownTraces != nil {
		if err := s.shutdownTraces(ctx); err != nil {
			s.logger.Error("traces shutdown error", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Manager returns the session manager for testing
func (s *Server) Manager() *session.Manager {
	return s.manager
}

// -----------------------------------------------------------------------------
// Adapters
// -----------------------------------------------------------------------------

// authAPIAdapter narrows the upstream client to what the session manager
// needs. The manager cannot import upstream directly without a cycle, since
// the client reads its bearer token back from the manager.
type authAPIAdapter struct {
	client *upstream.Client
}

func (a *authAPIAdapter) Login(ctx context.Context, email, password string) (string, *session.User, error) {
	result, err := a.client.Login(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	return result.Token, &session.User{
		ID:       result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
		Role:     result.User.Role,
	}, nil
}

func (a *authAPIAdapter) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}
