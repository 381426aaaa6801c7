package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attribution/internal/models"
)

func newTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResultCache(client, 0, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func testRequest() *models.AttributionRequest {
	return &models.AttributionRequest{
		AgencyID:     "agency-a",
		AdvertiserID: "adv-1",
		CampaignID:   "ctv-9",
		Start:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		MinVisits:    10,
	}
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "traffic-sources:agency-a:adv-1:ctv-9:2025-01-01:2025-02-01:10", ReportKey(testRequest()))

	noAgency := testRequest()
	noAgency.AgencyID = ""
	assert.Equal(t, "traffic-sources::adv-1:ctv-9:2025-01-01:2025-02-01:10", ReportKey(noAgency))
}

func TestResultCache_ScopedByAgency(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	reqA := testRequest()
	require.NoError(t, c.Set(ctx, reqA, &models.AttributionReport{
		AdvertiserID: reqA.AdvertiserID,
		Rows:         []models.AttributionRow{{Source: models.SourceGoogleAds, Visits: 99}},
	}))

	reqB := testRequest()
	reqB.AgencyID = "agency-b"
	got, err := c.Get(ctx, reqB)
	require.NoError(t, err)
	assert.Nil(t, got, "another agency must not see agency-a rows")

	got, err = c.Get(ctx, reqA)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(99), got.Rows[0].Visits)
}

func TestResultCache_MissReturnsNil(t *testing.T) {
	c, _ := newTestCache(t)

	report, err := c.Get(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestResultCache_SetGetAndExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	req := testRequest()

	want := &models.AttributionReport{
		AdvertiserID: req.AdvertiserID,
		StartDate:    "2025-01-01",
		EndDate:      "2025-02-01",
		MinVisits:    10,
		Rows: []models.AttributionRow{
			{Source: models.SourceGoogleAds, Visits: 12, CTVBefore: 3, CTVOverlapPct: 25},
		},
	}
	require.NoError(t, c.Set(ctx, req, want))

	got, err := c.Get(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Rows, got.Rows)
	assert.Equal(t, DefaultTTL, mr.TTL(ReportKey(req)))

	other := testRequest()
	other.MinVisits = 5
	miss, err := c.Get(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, miss)

	mr.FastForward(DefaultTTL + time.Second)
	expired, err := c.Get(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestResultCache_RedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), testRequest())
	assert.Error(t, err)
}
