package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"attribution/internal/models"
	"attribution/internal/routing"
)

var day0 = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func envelope(typ, advertiserID string, ts time.Time) models.EventEnvelope {
	return models.EventEnvelope{
		Type:         typ,
		AgencyID:     "agency-1",
		AdvertiserID: advertiserID,
		CampaignID:   "ctv-1",
		TsEvent:      ts,
	}
}

func marchQuery(advertiserID string) models.EventQuery {
	return models.EventQuery{
		AdvertiserID: advertiserID,
		Start:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEventStore_VisitsWindowIsHalfOpen(t *testing.T) {
	s := NewEventStore(openTestDB(t))
	ctx := context.Background()

	for i, ts := range []time.Time{
		time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), // before start
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),     // at start
		day0.Add(15 * time.Hour),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), // at end
	} {
		require.NoError(t, s.SaveVisit(ctx, envelope(models.EventTypeVisit, "adv-1", ts), models.VisitPayload{
			ClientID:     "10.0.0.1",
			Referrer:     "https://www.google.com/?gclid=x",
			ImpressionID: fmt.Sprintf("imp-%d", i),
		}))
	}
	require.NoError(t, s.SaveVisit(ctx, envelope(models.EventTypeVisit, "adv-2", day0), models.VisitPayload{ClientID: "10.0.0.2"}))

	visits, err := s.Visits(ctx, marchQuery("adv-1"))
	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, "imp-1", visits[0].ImpressionID)
	assert.Equal(t, "imp-2", visits[1].ImpressionID)
	assert.Equal(t, day0, visits[1].Date)
	assert.Equal(t, time.UTC, visits[1].Timestamp.Location())
	assert.Empty(t, visits[1].Source)
}

func TestEventStore_AgencyFilter(t *testing.T) {
	s := NewEventStore(openTestDB(t))
	ctx := context.Background()

	env := envelope(models.EventTypeConversion, "adv-1", day0)
	require.NoError(t, s.SaveConversion(ctx, env, models.ConversionPayload{DeviceID: "AB12CD", ImpressionID: "imp-1", IsLead: true}))
	env.AgencyID = "agency-2"
	require.NoError(t, s.SaveConversion(ctx, env, models.ConversionPayload{DeviceID: "EF34GH", ImpressionID: "imp-2", IsPurchase: true}))

	q := marchQuery("adv-1")
	all, err := s.Conversions(ctx, q)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	q.AgencyID = "agency-1"
	scoped, err := s.Conversions(ctx, q)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "AB12CD", scoped[0].DeviceID)
	assert.True(t, scoped[0].IsLead)
	assert.False(t, scoped[0].IsPurchase)
}

func TestEventStore_ExposuresByCampaign(t *testing.T) {
	s := NewEventStore(openTestDB(t))
	ctx := context.Background()

	env := envelope(models.EventTypeExposure, "adv-1", day0.Add(-10*24*time.Hour))
	require.NoError(t, s.SaveExposure(ctx, env, models.ExposurePayload{DeviceID: "ab12cd", ImpressionID: "x-1"}))
	env.CampaignID = "ctv-2"
	require.NoError(t, s.SaveExposure(ctx, env, models.ExposurePayload{DeviceID: "ef34gh", ImpressionID: "x-2"}))

	q := marchQuery("adv-1")
	all, err := s.Exposures(ctx, q)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	q.CampaignID = "ctv-1"
	one, err := s.Exposures(ctx, q)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "ab12cd", one[0].DeviceID)
	assert.True(t, one[0].Timestamp.Equal(day0.Add(-10*24*time.Hour)))
}

func TestConfigStore_LegacyNamesAndNotFound(t *testing.T) {
	db := openTestDB(t)
	s := NewConfigStore(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&AdvertiserConfigRecord{
		AdvertiserID:           "adv-legacy",
		ImpressionJoinStrategy: "ADM_PREFIX",
		Status:                 StatusActive,
	}).Error)
	require.NoError(t, db.Create(&AdvertiserConfigRecord{
		AdvertiserID:           "adv-off",
		ImpressionJoinStrategy: "DIRECT_AG",
		Status:                 "INACTIVE",
	}).Error)

	cfg, err := s.GetRoutingConfig(ctx, "adv-legacy")
	require.NoError(t, err)
	assert.Equal(t, models.StrategyRowLevelDistinct, cfg.Strategy)
	assert.Equal(t, models.ExposureImpression, cfg.ExposureSource)
	assert.False(t, cfg.Default)

	_, err = s.GetRoutingConfig(ctx, "adv-off")
	assert.ErrorIs(t, err, models.ErrConfigNotFound)

	_, err = s.GetRoutingConfig(ctx, "adv-missing")
	assert.ErrorIs(t, err, models.ErrConfigNotFound)
}

func TestConfigStore_Upsert(t *testing.T) {
	s := NewConfigStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.UpsertRoutingConfig(ctx, models.AdvertiserRoutingConfig{
		AdvertiserID: "adv-1", Strategy: models.StrategyPreAggregatedSum, ExposureSource: models.ExposureImpression,
	}))
	require.NoError(t, s.UpsertRoutingConfig(ctx, models.AdvertiserRoutingConfig{
		AdvertiserID: "adv-1", Strategy: models.StrategyNoImpressionJoin, ExposureSource: models.ExposureOOH,
	}))

	cfg, err := s.GetRoutingConfig(ctx, "adv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StrategyNoImpressionJoin, cfg.Strategy)
	assert.Equal(t, models.ExposureOOH, cfg.ExposureSource)
}

func TestImpressionStore_CountDistinct(t *testing.T) {
	db := openTestDB(t)
	events := NewEventStore(db)
	s := NewImpressionStore(db)
	ctx := context.Background()

	env := envelope(models.EventTypeExposure, "adv-1", day0)
	env.CampaignID = "camp-a"
	for i := 0; i < 3; i++ {
		// the same impression logged twice counts once
		for j := 0; j < 2; j++ {
			require.NoError(t, events.SaveExposure(ctx, env, models.ExposurePayload{
				DeviceID: "dev", ImpressionID: fmt.Sprintf("a-%d", i), CampaignName: "Spring",
			}))
		}
	}
	env.CampaignID = "camp-b"
	require.NoError(t, events.SaveExposure(ctx, env, models.ExposurePayload{DeviceID: "dev", ImpressionID: "b-0", CampaignName: "Fall"}))
	require.NoError(t, events.SaveVisit(ctx, envelope(models.EventTypeVisit, "adv-1", day0), models.VisitPayload{ClientID: "1.1.1.1", ImpressionID: "a-1"}))

	rows, err := s.CountDistinctImpressions(ctx, routing.ImpressionQuery{
		AdvertiserID: "adv-1",
		Start:        day0.Add(-time.Hour),
		End:          day0.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[string]models.CampaignPerformance{}
	for _, r := range rows {
		byID[r.CampaignID] = r
	}
	assert.Equal(t, int64(3), byID["camp-a"].Impressions)
	assert.Equal(t, int64(1), byID["camp-a"].Visits)
	assert.Equal(t, "Spring", byID["camp-a"].CampaignName)
	assert.Equal(t, int64(1), byID["camp-b"].Impressions)
	assert.Equal(t, int64(0), byID["camp-b"].Visits)
}

func TestImpressionStore_SumWeekly(t *testing.T) {
	s := NewImpressionStore(openTestDB(t))
	ctx := context.Background()

	weeks := []WeeklyCampaignStat{
		{AdvertiserID: "adv-1", CampaignID: "camp-a", CampaignName: "Spring", WeekStart: day0, Impressions: 60, Visits: 3},
		{AdvertiserID: "adv-1", CampaignID: "camp-a", CampaignName: "Spring", WeekStart: day0.AddDate(0, 0, 7), Impressions: 70, Visits: 4},
		{AdvertiserID: "adv-1", CampaignID: "camp-a", CampaignName: "Spring", WeekStart: day0.AddDate(0, 1, 0), Impressions: 999, Visits: 99},
		{AdvertiserID: "adv-2", CampaignID: "camp-z", WeekStart: day0, Impressions: 5},
	}
	for _, w := range weeks {
		require.NoError(t, s.SaveWeeklyStat(ctx, w))
	}

	rows, err := s.SumWeeklyImpressions(ctx, routing.ImpressionQuery{
		AdvertiserID: "adv-1",
		Start:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "camp-a", rows[0].CampaignID)
	assert.Equal(t, int64(130), rows[0].Impressions)
	assert.Equal(t, int64(7), rows[0].Visits)
}

func TestPing(t *testing.T) {
	assert.NoError(t, Ping(context.Background(), openTestDB(t)))
}
