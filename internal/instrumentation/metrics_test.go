package instrumentation

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("success")
	m.RecordEventsFetched("visits", 12)
	m.RecordEventsFetched("visits", 3)
	m.RecordResultCache("hit")
	m.RecordConfigFetch("stale")
	m.RecordDispatch("ROW_LEVEL_DISTINCT")
	m.RecordIngested("exposure")
	m.RecordError("attribution_engine", "invariant")
	m.RecordCalcLatency(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("success")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.EventsFetched.WithLabelValues("visits")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResultCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigFetchTotal.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyDispatches.WithLabelValues("ROW_LEVEL_DISTINCT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsIngested.WithLabelValues("exposure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("attribution_engine", "invariant")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["attribution_calc_latency_ms"])
	assert.True(t, names["routing_strategy_dispatch_total"])
}

// Separate registries keep tests from colliding on global registration.
func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics(prometheus.NewRegistry())
	b := NewMetrics(prometheus.NewRegistry())

	a.RecordRequest("error")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.RequestsTotal.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RequestsTotal.WithLabelValues("error")))
}
