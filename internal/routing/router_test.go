package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attribution/internal/models"
)

type fakeImpressions struct {
	distinct []models.CampaignPerformance
	weekly   []models.CampaignPerformance
	err      error

	distinctCalls int
	weeklyCalls   int
}

func (f *fakeImpressions) CountDistinctImpressions(ctx context.Context, q ImpressionQuery) ([]models.CampaignPerformance, error) {
	f.distinctCalls++
	return f.distinct, f.err
}

func (f *fakeImpressions) SumWeeklyImpressions(ctx context.Context, q ImpressionQuery) ([]models.CampaignPerformance, error) {
	f.weeklyCalls++
	return f.weekly, f.err
}

func campaigns() []models.CampaignPerformance {
	return []models.CampaignPerformance{
		{CampaignID: "c-low", CampaignName: "Low", Impressions: 40, Visits: 12},
		{CampaignID: "c-mid", CampaignName: "Mid", Impressions: 150, Visits: 2},
		{CampaignID: "c-top", CampaignName: "Top", Impressions: 900, Visits: 30},
		{CampaignID: "c-none", CampaignName: "None", Impressions: 5, Visits: 1},
	}
}

func testQuery(advertiserID string) ImpressionQuery {
	return ImpressionQuery{
		AdvertiserID: advertiserID,
		Start:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestRouter(store *fakeConfigStore, src ImpressionSource) *Router {
	c, _ := newTestCache(store, time.Minute)
	return NewRouter(c, src, discardLogger(), nil)
}

func campaignIDs(rows []models.CampaignPerformance) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CampaignID)
	}
	return ids
}

func TestRouter_RowLevelDistinct(t *testing.T) {
	store := &fakeConfigStore{}
	store.set(rowLevel("adv-row"), nil)
	src := &fakeImpressions{distinct: campaigns()}

	report, err := newTestRouter(store, src).CampaignPerformance(context.Background(), testQuery("adv-row"))
	require.NoError(t, err)

	assert.Equal(t, models.StrategyRowLevelDistinct, report.Strategy)
	assert.False(t, report.Skipped)
	assert.Equal(t, []string{"c-top", "c-mid"}, campaignIDs(report.Rows))
	assert.Equal(t, 1, src.distinctCalls)
	assert.Equal(t, 0, src.weeklyCalls)
}

func TestRouter_PreAggregatedSumKeepsVisitHeavyCampaigns(t *testing.T) {
	store := &fakeConfigStore{}
	store.set(models.AdvertiserRoutingConfig{
		AdvertiserID: "adv-pcm",
		Strategy:     models.StrategyPreAggregatedSum,
	}, nil)
	src := &fakeImpressions{weekly: campaigns()}

	report, err := newTestRouter(store, src).CampaignPerformance(context.Background(), testQuery("adv-pcm"))
	require.NoError(t, err)

	assert.Equal(t, models.StrategyPreAggregatedSum, report.Strategy)
	assert.Equal(t, []string{"c-top", "c-mid", "c-low"}, campaignIDs(report.Rows))
	assert.Equal(t, 0, src.distinctCalls)
	assert.Equal(t, 1, src.weeklyCalls)
}

func TestRouter_NoImpressionJoinSkips(t *testing.T) {
	store := &fakeConfigStore{}
	store.set(models.AdvertiserRoutingConfig{
		AdvertiserID:   "adv-web",
		Strategy:       models.StrategyNoImpressionJoin,
		ExposureSource: models.ExposureWeb,
	}, nil)
	src := &fakeImpressions{distinct: campaigns(), weekly: campaigns()}

	report, err := newTestRouter(store, src).CampaignPerformance(context.Background(), testQuery("adv-web"))
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Empty(t, report.Rows)
	assert.NotNil(t, report.Rows)
	assert.Equal(t, 0, src.distinctCalls+src.weeklyCalls)
}

func TestRouter_UnknownAdvertiserUsesDefaultStrategy(t *testing.T) {
	src := &fakeImpressions{weekly: campaigns()}

	report, err := newTestRouter(&fakeConfigStore{}, src).CampaignPerformance(context.Background(), testQuery("adv-new"))
	require.NoError(t, err)

	assert.Equal(t, models.DefaultStrategy, report.Strategy)
	assert.Equal(t, 1, src.weeklyCalls)
}

func TestRouter_SourceFailure(t *testing.T) {
	store := &fakeConfigStore{}
	store.set(rowLevel("adv-row"), nil)
	src := &fakeImpressions{err: errors.New("disk I/O error")}

	_, err := newTestRouter(store, src).CampaignPerformance(context.Background(), testQuery("adv-row"))
	var sue *models.SourceUnavailableError
	require.ErrorAs(t, err, &sue)
	assert.Equal(t, "impression_log", sue.Source)
}

func TestRouter_DispatchUnknownStrategy(t *testing.T) {
	r := newTestRouter(&fakeConfigStore{}, &fakeImpressions{})

	_, err := r.Dispatch(context.Background(), models.AdvertiserRoutingConfig{Strategy: "BOGUS"}, testQuery("adv"))
	require.Error(t, err)
}

func TestRouter_EveryStrategyHasHandler(t *testing.T) {
	for _, s := range []models.Strategy{
		models.StrategyRowLevelDistinct,
		models.StrategyPreAggregatedSum,
		models.StrategyNoImpressionJoin,
	} {
		_, ok := handlers[s]
		assert.True(t, ok, "missing handler for %s", s)
	}
}
