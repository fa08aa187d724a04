// Package server assembles the API gateway: façade endpoints, the routing
// dispatcher and the error boundary.
package server

import (
	"fmt"
	"net/http"
	"time"

	"kursor/services/gateway/authgate"
	"kursor/services/gateway/health"
	"kursor/services/gateway/metrics"
	"kursor/services/gateway/routing"
	"kursor/shared/config"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Name identifies the gateway in every response body
	Name    = "api-gateway"
	Version = "1.0.0"
)

// availableRoutes is the static hint list returned with 404s
var availableRoutes = []string{
	"GET /health",
	"GET /info",
	"GET /services",
	"GET /dashboard",
	"POST /auth/signup",
	"POST /auth/login",
	"GET /profile",
	"PUT /profile",
	"GET /snippets",
	"POST /snippets",
	"GET /execute",
	"POST /contact",
	"POST /notify",
}

// Deps are the collaborators of the gateway
type Deps struct {
	Registry   *routing.Registry
	Table      *routing.Table
	Proxy      *routing.Proxy
	Auth       routing.Authenticator
	Forwarder  routing.CredentialForwarder
	Aggregator *health.Aggregator
	Gatherer   prometheus.Gatherer
}

// Server is the gateway HTTP handler
type Server struct {
	cfg       *config.Config
	deps      Deps
	engine    *gin.Engine
	startedAt time.Time
}

// NewFromConfig wires the gateway from configuration. Collectors are
// registered with reg and exposed on /metrics.
func NewFromConfig(cfg *config.Config, reg *prometheus.Registry) (*Server, error) {
	registry, err := routing.RegistryFromConfig(cfg.Services)
	if err != nil {
		return nil, fmt.Errorf("invalid service registry: %w", err)
	}
	table, err := routing.NewTable(registry, routing.DefaultRoutes())
	if err != nil {
		return nil, fmt.Errorf("invalid routing table: %w", err)
	}
	forwarder, err := authgate.NewForwarder(cfg.Gateway)
	if err != nil {
		return nil, err
	}
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	service, _ := registry.Lookup(routing.ServiceUser)
	deps := Deps{
		Registry:   registry,
		Table:      table,
		Proxy:      routing.NewProxy(&http.Client{Timeout: cfg.Gateway.ProxyTimeout}, m),
		Auth:       authgate.New(service.URL, nil, m),
		Forwarder:  forwarder,
		Aggregator: health.NewAggregator(registry, nil, cfg.Gateway.ProbeTimeout, m),
		Gatherer:   reg,
	}
	return New(cfg, deps), nil
}

// New builds the gin engine for the gateway
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:       cfg,
		deps:      deps,
		engine:    gin.New(),
		startedAt: time.Now(),
	}
	// The gateway is the public edge; client IPs come from the peer address.
	_ = s.engine.SetTrustedProxies(nil)
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	r := s.engine
	r.Use(s.errorBoundary())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(s.cfg.CORS.AllowOrigins))
	r.Use(middleware.LoggerMiddlewareWithRequestID())

	r.GET("/health", s.healthHandler)
	r.GET("/info", s.infoHandler)
	r.GET("/services", s.servicesHandler)
	r.GET("/dashboard", s.dashboardHandler)
	if s.deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	router := routing.NewRouter(s.deps.Table, s.deps.Proxy, s.deps.Auth, s.deps.Forwarder, s.notFoundHandler)
	r.NoRoute(router.Handle)
}

// errorBoundary turns panics and handler errors into the gateway 500 body
func (s *Server) errorBoundary() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				s.internalError(c, fmt.Sprint(recovered))
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			s.internalError(c, c.Errors.Last().Error())
		}
	}
}

func (s *Server) internalError(c *gin.Context, details string) {
	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"error":      details,
	}).Error("Gateway error")

	if c.Writer.Written() {
		c.Abort()
		return
	}
	body := gin.H{
		"error":   "Internal gateway error",
		"gateway": Name,
	}
	if !s.cfg.IsProduction() {
		body["details"] = details
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (s *Server) healthHandler(c *gin.Context) {
	reports := s.deps.Aggregator.Health(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":    health.Composite(reports),
		"gateway":   Name,
		"timestamp": timestamp(),
		"services":  reports,
		"port":      s.cfg.Server.Port,
	})
}

func (s *Server) infoHandler(c *gin.Context) {
	routes := s.deps.Table.Manifest()
	routes["/health"] = "Gateway and services health"
	routes["/info"] = "Gateway information"
	routes["/services"] = "Service discovery"
	routes["/dashboard"] = "Aggregated dashboard"

	c.JSON(http.StatusOK, gin.H{
		"service":     Name,
		"version":     Version,
		"description": "API Gateway for Kursor microservices architecture",
		"services":    s.deps.Registry.URLs(),
		"routes":      routes,
		"environment": s.cfg.Environment,
	})
}

func (s *Server) servicesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gateway":  Name,
		"services": s.deps.Aggregator.Info(c.Request.Context()),
	})
}

func (s *Server) dashboardHandler(c *gin.Context) {
	snap := s.deps.Aggregator.Snapshot(c.Request.Context())

	services := make(gin.H, s.deps.Registry.Len())
	for _, svc := range s.deps.Registry.Services() {
		services[svc.Name] = gin.H{
			"health": snap.Health[svc.Name],
			"info":   snap.Info[svc.Name],
			"url":    svc.URL,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"gateway": gin.H{
			"name":      Name,
			"status":    health.StatusHealthy,
			"port":      s.cfg.Server.Port,
			"uptime":    time.Since(s.startedAt).Seconds(),
			"timestamp": timestamp(),
		},
		"services": services,
		"summary": gin.H{
			"totalServices":   s.deps.Registry.Len(),
			"healthyServices": snap.Healthy(),
			"gatewayVersion":  Version,
			"environment":     s.cfg.Environment,
		},
	})
}

func (s *Server) notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":           "Endpoint not found",
		"gateway":         Name,
		"requestedPath":   middleware.RequestedPath(c),
		"availableRoutes": availableRoutes,
	})
}
