package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"attribution/internal/instrumentation"
	"attribution/internal/models"
)

const (
	// MinCampaignImpressions is the impression floor for reported campaigns.
	MinCampaignImpressions = 100
	// MinCampaignVisits keeps low-impression campaigns from a weekly rollup that still drove visits.
	MinCampaignVisits = 10
)

// ImpressionQuery scopes an impression computation.
type ImpressionQuery struct {
	AgencyID     string
	AdvertiserID string
	Start        time.Time
	End          time.Time // exclusive
}

// ImpressionSource provides the two impression counting paths.
type ImpressionSource interface {
	// CountDistinctImpressions counts distinct impression IDs per campaign in the row-level exposure log.
	CountDistinctImpressions(ctx context.Context, q ImpressionQuery) ([]models.CampaignPerformance, error)
	// SumWeeklyImpressions sums the pre-aggregated weekly rollup per campaign.
	SumWeeklyImpressions(ctx context.Context, q ImpressionQuery) ([]models.CampaignPerformance, error)
}

type strategyHandler func(ctx context.Context, src ImpressionSource, q ImpressionQuery) ([]models.CampaignPerformance, bool, error)

// handlers is the single dispatch table. Adding a strategy means adding an entry here.
var handlers = map[models.Strategy]strategyHandler{
	models.StrategyRowLevelDistinct: rowLevelDistinct,
	models.StrategyPreAggregatedSum: preAggregatedSum,
	models.StrategyNoImpressionJoin: noImpressionJoin,
}

func rowLevelDistinct(ctx context.Context, src ImpressionSource, q ImpressionQuery) ([]models.CampaignPerformance, bool, error) {
	rows, err := src.CountDistinctImpressions(ctx, q)
	if err != nil {
		return nil, false, models.Unavailable("impression_log", err)
	}
	return filterCampaigns(rows, func(r models.CampaignPerformance) bool {
		return r.Impressions >= MinCampaignImpressions
	}), false, nil
}

func preAggregatedSum(ctx context.Context, src ImpressionSource, q ImpressionQuery) ([]models.CampaignPerformance, bool, error) {
	rows, err := src.SumWeeklyImpressions(ctx, q)
	if err != nil {
		return nil, false, models.Unavailable("weekly_rollup", err)
	}
	return filterCampaigns(rows, func(r models.CampaignPerformance) bool {
		return r.Impressions >= MinCampaignImpressions || r.Visits >= MinCampaignVisits
	}), false, nil
}

func noImpressionJoin(context.Context, ImpressionSource, ImpressionQuery) ([]models.CampaignPerformance, bool, error) {
	return []models.CampaignPerformance{}, true, nil
}

func filterCampaigns(rows []models.CampaignPerformance, keep func(models.CampaignPerformance) bool) []models.CampaignPerformance {
	out := make([]models.CampaignPerformance, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Impressions != out[j].Impressions {
			return out[i].Impressions > out[j].Impressions
		}
		return out[i].CampaignID < out[j].CampaignID
	})
	return out
}

// Router selects the impression computation path from an advertiser's routing config.
type Router struct {
	configs *ConfigCache
	source  ImpressionSource
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewRouter creates a router over a config cache and an impression source.
func NewRouter(configs *ConfigCache, source ImpressionSource, logger *slog.Logger, metrics *instrumentation.Metrics) *Router {
	return &Router{
		configs: configs,
		source:  source,
		logger:  logger.With("component", "strategy_router"),
		metrics: metrics,
	}
}

// Config resolves the routing config for an advertiser through the cache.
func (r *Router) Config(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error) {
	return r.configs.Get(ctx, advertiserID)
}

// CampaignPerformance resolves the advertiser's strategy and runs its handler.
func (r *Router) CampaignPerformance(ctx context.Context, q ImpressionQuery) (*models.CampaignPerformanceReport, error) {
	cfg, err := r.configs.Get(ctx, q.AdvertiserID)
	if err != nil {
		return nil, err
	}
	return r.Dispatch(ctx, cfg, q)
}

// Dispatch runs the handler registered for cfg.Strategy.
func (r *Router) Dispatch(ctx context.Context, cfg models.AdvertiserRoutingConfig, q ImpressionQuery) (*models.CampaignPerformanceReport, error) {
	handler, ok := handlers[cfg.Strategy]
	if !ok {
		return nil, fmt.Errorf("no handler for strategy %q", cfg.Strategy)
	}

	start := time.Now()
	rows, skipped, err := handler(ctx, r.source, q)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("strategy_router", string(cfg.Strategy))
		}
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordDispatch(string(cfg.Strategy))
	}

	r.logger.Info("campaign_performance_computed",
		"advertiser_id", q.AdvertiserID,
		"strategy", cfg.Strategy,
		"default_config", cfg.Default,
		"campaigns", len(rows),
		"skipped", skipped,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &models.CampaignPerformanceReport{
		AdvertiserID: q.AdvertiserID,
		Strategy:     cfg.Strategy,
		Skipped:      skipped,
		Rows:         rows,
	}, nil
}
