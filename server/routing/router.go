// Package routing assembles the chi router of the gateway: the global
// middleware stack, the API routes and the JSON 404/405 fallbacks.
package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/errors"
	"github.com/teilomillet/chatintel/server/handlers"
	"github.com/teilomillet/chatintel/server/metrics"
	"github.com/teilomillet/chatintel/server/middleware"
	"go.uber.org/zap"
)

// Router serves the gateway's HTTP API.
type Router struct {
	router  chi.Router
	gateway *handlers.GatewayHandler
	metrics *metrics.Metrics
	logger  *zap.Logger
	cfg     *config.Config
}

// NewRouter builds the router. m may be nil, which disables both the
// metrics middleware and the metrics endpoint.
//
// Middleware runs in this order: request ID, panic recovery, logging,
// metrics, CORS, rate limiting.
func NewRouter(cfg *config.Config, gateway *handlers.GatewayHandler, m *metrics.Metrics, logger *zap.Logger) *Router {
	r := &Router{
		router:  chi.NewRouter(),
		gateway: gateway,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
	}

	r.router.Use(middleware.RequestID)
	r.router.Use(errors.ErrorHandler(logger))
	r.router.Use(middleware.Logging(logger))
	if m != nil {
		r.router.Use(middleware.PrometheusMetrics(m))
	}
	r.router.Use(middleware.CORS)
	if cfg.RateLimit.Enabled {
		r.router.Use(middleware.NewRateLimiter(cfg.RateLimit, m).Handler)
	}

	r.setupRoutes()

	return r
}

func (r *Router) setupRoutes() {
	r.router.NotFound(handlers.NotFound)
	r.router.MethodNotAllowed(handlers.MethodNotAllowed)

	r.router.Get("/", r.gateway.Home)

	r.router.Route("/api", func(api chi.Router) {
		api.Get("/health", r.gateway.Health)
		api.Get("/modes", r.gateway.Modes)
		api.Post("/ask", r.gateway.Ask)
		api.Post("/translate", r.gateway.Translate)
		api.Post("/feedback", r.gateway.Feedback)
	})

	if r.metrics != nil && r.cfg.Metrics.Enabled {
		RegisterMetricsRoutes(r.router, r.cfg.Metrics.Path, r.metrics)
	}

	r.logger.Debug("Routes configured",
		zap.Bool("metrics", r.metrics != nil && r.cfg.Metrics.Enabled),
		zap.Bool("rate_limit", r.cfg.RateLimit.Enabled),
	)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
