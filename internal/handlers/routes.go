package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"attribution/internal/instrumentation"
)

// RouterConfig holds everything the HTTP router serves.
type RouterConfig struct {
	Reporter         Reporter
	Authorizer       Authorizer
	Ping             Pinger
	DefaultMinVisits int
	Timeout          time.Duration
	Logger           *slog.Logger
	Metrics          *instrumentation.Metrics
}

// NewRouter builds the service's HTTP routes.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	mcpHandler, err := NewMCPInvokeHandler(cfg.Reporter, cfg.DefaultMinVisits, cfg.Timeout, cfg.Logger)
	if err != nil {
		return nil, err
	}
	reports := NewReportHandler(cfg.Reporter, cfg.DefaultMinVisits, cfg.Logger, cfg.Metrics)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// unauthenticated, for container health checks
	r.Get("/health", HealthCheckHandler(cfg.Ping, cfg.Logger))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Authorizer))
		r.Use(TimeoutMiddleware(cfg.Timeout))

		r.Route("/v1", func(r chi.Router) {
			r.Get("/traffic-sources", reports.TrafficSources)
			r.Get("/campaign-performance", reports.CampaignPerformance)
			r.Get("/advertisers/{advertiserID}/routing-config", reports.RoutingConfig)
		})

		r.Post("/mcp/sse", mcpHandler.ServeHTTP)
	})

	return r, nil
}
