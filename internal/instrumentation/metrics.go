package instrumentation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the attribution service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	CalcLatencyMs    prometheus.Histogram
	EventsFetched    *prometheus.CounterVec
	ResultCacheTotal *prometheus.CounterVec

	ConfigFetchTotal   *prometheus.CounterVec
	StrategyDispatches *prometheus.CounterVec

	EventsIngested *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Attribution requests by outcome
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attribution_requests_total",
			Help: "Total number of attribution computations by status",
		}, []string{"status"}),

		// End-to-end pipeline latency, fetch included
		CalcLatencyMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "attribution_calc_latency_ms",
			Help:    "Time to fetch events and compute an attribution table in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}),

		EventsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attribution_events_fetched_total",
			Help: "Total number of event rows read from the event source by stream",
		}, []string{"stream"}),

		ResultCacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attribution_result_cache_total",
			Help: "Result cache lookups by result (hit, miss, error)",
		}, []string{"result"}),

		ConfigFetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_config_fetch_total",
			Help: "Advertiser routing config lookups by result (hit, stale, fetched, default, error)",
		}, []string{"result"}),

		StrategyDispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "routing_strategy_dispatch_total",
			Help: "Impression computations dispatched by strategy",
		}, []string{"strategy"}),

		EventsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attribution_events_ingested_total",
			Help: "Events persisted from the ingest stream by type",
		}, []string{"type"}),

		// Errors by component and type
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attribution_errors_total",
			Help: "Total number of errors by component and type",
		}, []string{"component", "error_type"}),
	}
}

// RecordRequest counts a finished attribution computation.
func (m *Metrics) RecordRequest(status string) {
	m.RequestsTotal.WithLabelValues(status).Inc()
}

// RecordCalcLatency records the time to compute an attribution table.
func (m *Metrics) RecordCalcLatency(latencyMs float64) {
	m.CalcLatencyMs.Observe(latencyMs)
}

// RecordEventsFetched adds n rows read from stream.
func (m *Metrics) RecordEventsFetched(stream string, n int) {
	m.EventsFetched.WithLabelValues(stream).Add(float64(n))
}

// RecordResultCache counts a result cache lookup.
func (m *Metrics) RecordResultCache(result string) {
	m.ResultCacheTotal.WithLabelValues(result).Inc()
}

// RecordConfigFetch counts a routing config lookup.
func (m *Metrics) RecordConfigFetch(result string) {
	m.ConfigFetchTotal.WithLabelValues(result).Inc()
}

// RecordDispatch counts a strategy dispatch.
func (m *Metrics) RecordDispatch(strategy string) {
	m.StrategyDispatches.WithLabelValues(strategy).Inc()
}

// RecordIngested counts an ingested event.
func (m *Metrics) RecordIngested(eventType string) {
	m.EventsIngested.WithLabelValues(eventType).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
