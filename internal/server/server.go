// Package server exposes the planner over HTTP.
//
// Routes:
//   - POST /v1/plan: plan a mission document (JSON or YAML body)
//   - GET /v1/plan/stream: websocket; send a mission, receive search events then the result
//   - GET /metrics: Prometheus scrape endpoint
//   - GET /health/live, /health/ready, /health/startup: Kubernetes-style probes
//
// Shutdown marks readiness as failing before draining in-flight plans.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/taskplan/internal/health"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/planner"
)

// Server provides the plan API with health endpoints.
type Server struct {
	httpServer      *http.Server
	router          *gin.Engine
	probes          *health.ProbeManager
	planner         *planner.Planner
	logger          *log.Logger
	metrics         *metrics.Metrics
	gatherer        prometheus.Gatherer
	upgrader        websocket.Upgrader
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
	maxBodyBytes    int64
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080", "0.0.0.0:8080")
	Address string

	// ShutdownTimeout bounds connection draining. Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	// ReadTimeout defaults to 10 seconds.
	ReadTimeout time.Duration

	// WriteTimeout defaults to 60 seconds so long plans can finish.
	WriteTimeout time.Duration

	// IdleTimeout defaults to 60 seconds.
	IdleTimeout time.Duration

	// MaxBodyBytes caps mission documents. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request and planning logger
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics counts requests in m and serves gatherer on /metrics
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// NewServer creates the server. p plans every request whose mission carries
// no planner overrides; probes gains a planner canary check.
func NewServer(p *planner.Planner, probes *health.ProbeManager, cfg Config, opts ...Option) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		probes:          probes,
		planner:         p,
		logger:          log.Nop(),
		shutdownTimeout: cfg.ShutdownTimeout,
		maxBodyBytes:    cfg.MaxBodyBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if canary, err := health.NewPlannerCanary(p.Config()); err != nil {
		s.logger.WithError(err).Warn("planner canary disabled")
	} else {
		probes.AddChecker(canary)
	}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.HandleMethodNotAllowed = true
	s.router.Use(gin.Recovery(), s.observe)
	s.routes()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes() {
	v1 := s.router.Group("/v1")
	v1.POST("/plan", s.handlePlan)
	v1.GET("/plan/stream", s.handleStream)

	s.router.GET("/health/live", s.handleLiveness)
	s.router.GET("/health/ready", s.handleReadiness)
	s.router.GET("/health/startup", s.handleStartup)

	if s.gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(metrics.HandlerFor(s.gatherer)))
	}
}

// Handler returns the routed handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	s.probes.MarkInitialized()
	s.logger.Info("plan server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on l
func (s *Server) Serve(l net.Listener) error {
	s.probes.MarkInitialized()
	s.logger.Info("plan server listening", "addr", l.Addr().String())
	return s.httpServer.Serve(l)
}

// Shutdown fails readiness, stops keep-alives and waits for in-flight
// requests up to ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probes.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	s.logger.Info("plan server shutting down", "timeout", s.shutdownTimeout)
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// observe counts and logs every request
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	if s.metrics != nil {
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
	s.logger.DebugContext(c.Request.Context(), "request served",
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"duration", time.Since(start))
}

func (s *Server) writeProbe(c *gin.Context, result *health.ProbeResult, unhealthyStatus int) {
	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = unhealthyStatus
	}
	c.JSON(status, result)
}

// handleLiveness always answers 200; shutdown is reported as degraded
func (s *Server) handleLiveness(c *gin.Context) {
	s.writeProbe(c, s.probes.CheckLiveness(c.Request.Context()), http.StatusOK)
}

// handleReadiness answers 503 while shutting down or when a check fails
func (s *Server) handleReadiness(c *gin.Context) {
	s.writeProbe(c, s.probes.CheckReadiness(c.Request.Context()), http.StatusServiceUnavailable)
}

func (s *Server) handleStartup(c *gin.Context) {
	s.writeProbe(c, s.probes.CheckStartup(c.Request.Context()), http.StatusServiceUnavailable)
}
