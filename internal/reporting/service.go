package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"attribution/internal/models"
	"attribution/internal/routing"
)

// Engine computes attribution reports.
type Engine interface {
	Compute(ctx context.Context, req *models.AttributionRequest) (*models.AttributionReport, error)
}

// Router resolves routing config and campaign performance.
type Router interface {
	Config(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error)
	CampaignPerformance(ctx context.Context, q routing.ImpressionQuery) (*models.CampaignPerformanceReport, error)
}

// Service is the read surface shared by the HTTP and MCP transports.
type Service struct {
	engine Engine
	router Router
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a reporting service.
func NewService(engine Engine, router Router, logger *slog.Logger) *Service {
	return &Service{
		engine: engine,
		router: router,
		logger: logger.With("component", "reporting"),
		now:    time.Now,
	}
}

// TrafficSources returns the attribution table for req. Advertisers whose
// impressions are not row-level get an empty table and an explanation.
func (s *Service) TrafficSources(ctx context.Context, req *models.AttributionRequest) (*models.TrafficSourcesResponse, error) {
	cfg, err := s.router.Config(ctx, req.AdvertiserID)
	if err != nil {
		return nil, err
	}

	if cfg.Strategy != models.StrategyRowLevelDistinct {
		s.logger.Info("traffic_sources_gated",
			"advertiser_id", req.AdvertiserID,
			"strategy", cfg.Strategy,
		)
		return &models.TrafficSourcesResponse{
			AttributionReport: models.AttributionReport{
				AdvertiserID: req.AdvertiserID,
				CampaignID:   req.CampaignID,
				StartDate:    req.Start.Format(models.DateLayout),
				EndDate:      req.End.Format(models.DateLayout),
				MinVisits:    req.MinVisits,
				GeneratedAt:  s.now().UTC(),
				Rows:         []models.AttributionRow{},
			},
			Strategy: cfg.Strategy,
			Message: fmt.Sprintf("traffic source attribution requires row-level impression data; advertiser %s uses %s",
				req.AdvertiserID, cfg.Strategy),
		}, nil
	}

	report, err := s.engine.Compute(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.TrafficSourcesResponse{AttributionReport: *report, Strategy: cfg.Strategy}, nil
}

// CampaignPerformance returns per-campaign impressions and visits computed with the advertiser's strategy.
func (s *Service) CampaignPerformance(ctx context.Context, req *models.AttributionRequest) (*models.CampaignPerformanceReport, error) {
	return s.router.CampaignPerformance(ctx, routing.ImpressionQuery{
		AgencyID:     req.AgencyID,
		AdvertiserID: req.AdvertiserID,
		Start:        req.Start,
		End:          req.End,
	})
}

// RoutingConfig returns the advertiser's resolved routing config.
func (s *Service) RoutingConfig(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error) {
	return s.router.Config(ctx, advertiserID)
}
