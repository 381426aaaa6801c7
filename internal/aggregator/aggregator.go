package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"attribution/internal/instrumentation"
	"attribution/internal/metrics"
	"attribution/internal/models"
)

// EventSource serves the three event reads of an attribution request.
type EventSource interface {
	Visits(ctx context.Context, q models.EventQuery) ([]models.VisitEvent, error)
	Conversions(ctx context.Context, q models.EventQuery) ([]models.ConversionEvent, error)
	Exposures(ctx context.Context, q models.EventQuery) ([]models.ExposureEvent, error)
}

// ResultCache stores computed reports. Get returns nil, nil on a miss.
type ResultCache interface {
	Get(ctx context.Context, req *models.AttributionRequest) (*models.AttributionReport, error)
	Set(ctx context.Context, req *models.AttributionRequest, report *models.AttributionReport) error
}

// Options configure an Engine.
type Options struct {
	Timeout time.Duration // bound on the event-source reads; zero means the caller's deadline only
	Window  time.Duration // CTV matching window
	Rules   metrics.SourceRules
}

// Engine runs attribution requests end to end: fetch, compute, cache.
type Engine struct {
	source  EventSource
	cache   ResultCache
	opts    Options
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	now     func() time.Time
	check   func([]models.AttributionRow) error
}

// New creates an engine. cache may be nil.
func New(source EventSource, cache ResultCache, opts Options, logger *slog.Logger, m *instrumentation.Metrics) *Engine {
	return &Engine{
		source:  source,
		cache:   cache,
		opts:    opts,
		logger:  logger.With("component", "attribution_engine"),
		metrics: m,
		now:     time.Now,
		check:   metrics.RowsInvariant,
	}
}

type fetched struct {
	visits      []models.VisitEvent
	conversions []models.ConversionEvent
	exposures   []models.ExposureEvent
}

// Compute returns the attribution report for req. A failed or timed-out read
// fails the whole request; no partial rows are returned.
func (e *Engine) Compute(ctx context.Context, req *models.AttributionRequest) (*models.AttributionReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if report := e.cached(ctx, req); report != nil {
		return report, nil
	}

	startTime := time.Now()

	data, err := e.fetch(ctx, req.Query())
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordError("attribution_engine", "source_unavailable")
		}
		return nil, err
	}

	rows := metrics.Attribute(data.visits, data.conversions, data.exposures, metrics.Options{
		Rules:     e.opts.Rules,
		Window:    e.opts.Window,
		MinVisits: req.MinVisits,
	})
	// A table that fails the check is still returned but never cached.
	cacheable := true
	if err := e.check(rows); err != nil {
		cacheable = false
		e.logger.Error("attribution_invariant_violated", "advertiser_id", req.AdvertiserID, "error", err)
		if e.metrics != nil {
			e.metrics.RecordError("attribution_engine", "invariant")
		}
	}

	report := &models.AttributionReport{
		AdvertiserID: req.AdvertiserID,
		CampaignID:   req.CampaignID,
		StartDate:    req.Start.Format(models.DateLayout),
		EndDate:      req.End.Format(models.DateLayout),
		MinVisits:    req.MinVisits,
		GeneratedAt:  e.now().UTC(),
		Rows:         rows,
	}

	elapsed := time.Since(startTime)
	if e.metrics != nil {
		e.metrics.RecordCalcLatency(float64(elapsed.Milliseconds()))
	}

	e.logger.Info("attribution_computed",
		"advertiser_id", req.AdvertiserID,
		"campaign_id", req.CampaignID,
		"visits", len(data.visits),
		"conversions", len(data.conversions),
		"exposures", len(data.exposures),
		"rows", len(rows),
		"latency_ms", elapsed.Milliseconds(),
	)

	if e.cache != nil && cacheable {
		if err := e.cache.Set(ctx, req, report); err != nil {
			e.logger.Warn("result_cache_set_failed", "advertiser_id", req.AdvertiserID, "error", err)
			if e.metrics != nil {
				e.metrics.RecordResultCache("error")
			}
		}
	}

	return report, nil
}

func (e *Engine) cached(ctx context.Context, req *models.AttributionRequest) *models.AttributionReport {
	if e.cache == nil {
		return nil
	}

	report, err := e.cache.Get(ctx, req)
	switch {
	case err != nil:
		e.logger.Warn("result_cache_get_failed", "advertiser_id", req.AdvertiserID, "error", err)
		e.recordCache("error")
		return nil
	case report == nil:
		e.recordCache("miss")
		return nil
	}

	e.recordCache("hit")
	return report
}

func (e *Engine) recordCache(result string) {
	if e.metrics != nil {
		e.metrics.RecordResultCache(result)
	}
}

// fetch reads the three streams concurrently.
func (e *Engine) fetch(ctx context.Context, q models.EventQuery) (*fetched, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	var data fetched
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := e.source.Visits(gctx, q)
		if err != nil {
			return models.Unavailable("visits", err)
		}
		data.visits = v
		e.recordFetched("visits", len(v))
		return nil
	})
	g.Go(func() error {
		c, err := e.source.Conversions(gctx, q)
		if err != nil {
			return models.Unavailable("conversions", err)
		}
		data.conversions = c
		e.recordFetched("conversions", len(c))
		return nil
	})
	g.Go(func() error {
		x, err := e.source.Exposures(gctx, q)
		if err != nil {
			return models.Unavailable("exposures", err)
		}
		data.exposures = x
		e.recordFetched("exposures", len(x))
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &models.SourceUnavailableError{Source: "event_source", Err: ctx.Err()}
		}
		return nil, err
	}
	return &data, nil
}

func (e *Engine) recordFetched(stream string, n int) {
	if e.metrics != nil {
		e.metrics.RecordEventsFetched(stream, n)
	}
}
