package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"attribution/internal/instrumentation"
	"attribution/internal/models"
)

// Reporter is the read surface served over HTTP.
type Reporter interface {
	TrafficSources(ctx context.Context, req *models.AttributionRequest) (*models.TrafficSourcesResponse, error)
	CampaignPerformance(ctx context.Context, req *models.AttributionRequest) (*models.CampaignPerformanceReport, error)
	RoutingConfig(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error)
}

// ReportHandler serves the attribution and campaign endpoints.
type ReportHandler struct {
	reporter         Reporter
	defaultMinVisits int
	logger           *slog.Logger
	metrics          *instrumentation.Metrics
}

// NewReportHandler creates the report handlers.
func NewReportHandler(reporter Reporter, defaultMinVisits int, logger *slog.Logger, m *instrumentation.Metrics) *ReportHandler {
	return &ReportHandler{
		reporter:         reporter,
		defaultMinVisits: defaultMinVisits,
		logger:           logger.With("handler", "reports"),
		metrics:          m,
	}
}

// parseRequest reads the attribution request from the query string.
func (h *ReportHandler) parseRequest(r *http.Request) (*models.AttributionRequest, error) {
	q := r.URL.Query()
	p := models.RequestParams{
		AdvertiserID: q.Get("advertiser_id"),
		CampaignID:   q.Get("campaign_id"),
		AgencyID:     q.Get("agency_id"),
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
	}
	if raw := q.Get("min_visits"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &models.ValidationError{Field: "min_visits", Message: "must be an integer"}
		}
		p.MinVisits = &n
	}
	return models.ParseRequest(p, h.defaultMinVisits)
}

// TrafficSources handles GET /v1/traffic-sources.
func (h *ReportHandler) TrafficSources(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		h.fail(w, r, "traffic_sources", err)
		return
	}

	resp, err := h.reporter.TrafficSources(r.Context(), req)
	if err != nil {
		h.fail(w, r, "traffic_sources", err)
		return
	}

	h.record("ok")
	writeJSON(w, http.StatusOK, resp)

	h.logger.Info("traffic_sources_success",
		"advertiser_id", req.AdvertiserID,
		"rows", len(resp.Rows),
		"strategy", resp.Strategy,
		"correlation_id", GetCorrelationID(r.Context()),
	)
}

// CampaignPerformance handles GET /v1/campaign-performance.
func (h *ReportHandler) CampaignPerformance(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		h.fail(w, r, "campaign_performance", err)
		return
	}

	report, err := h.reporter.CampaignPerformance(r.Context(), req)
	if err != nil {
		h.fail(w, r, "campaign_performance", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// RoutingConfig handles GET /v1/advertisers/{advertiserID}/routing-config.
func (h *ReportHandler) RoutingConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.reporter.RoutingConfig(r.Context(), chi.URLParam(r, "advertiserID"))
	if err != nil {
		h.fail(w, r, "routing_config", err)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	status, code, label := classify(err)
	if endpoint == "traffic_sources" {
		h.record(label)
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, endpoint+"_failed",
		"status", status,
		"error", err,
		"correlation_id", GetCorrelationID(r.Context()),
	)

	sendError(w, status, code, errorMessage(err))
}

func (h *ReportHandler) record(status string) {
	if h.metrics != nil {
		h.metrics.RecordRequest(status)
	}
}
