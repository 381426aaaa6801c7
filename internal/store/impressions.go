package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"attribution/internal/models"
	"attribution/internal/routing"
)

// ImpressionStore implements the row-level and pre-aggregated impression counts.
type ImpressionStore struct {
	db *gorm.DB
}

// NewImpressionStore creates an impression store.
func NewImpressionStore(db *gorm.DB) *ImpressionStore {
	return &ImpressionStore{db: db}
}

// CountDistinctImpressions counts distinct impression IDs per campaign, and the
// distinct page-view impression IDs that resolve to them.
func (s *ImpressionStore) CountDistinctImpressions(ctx context.Context, q routing.ImpressionQuery) ([]models.CampaignPerformance, error) {
	tx := s.db.WithContext(ctx).
		Table("ad_impression_log AS i").
		Select(`i.campaign_id AS campaign_id,
			MAX(i.campaign_name) AS campaign_name,
			COUNT(DISTINCT i.impression_id) AS impressions,
			COUNT(DISTINCT v.impression_id) AS visits`).
		Joins("LEFT JOIN web_visitors_to_log AS v ON v.impression_id = i.impression_id AND v.advertiser_id = i.advertiser_id").
		Where("i.advertiser_id = ?", q.AdvertiserID).
		Where("i.ts >= ? AND i.ts < ?", q.Start.UTC(), q.End.UTC())
	if q.AgencyID != "" {
		tx = tx.Where("i.agency_id = ?", q.AgencyID)
	}

	var rows []models.CampaignPerformance
	if err := tx.Group("i.campaign_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count distinct impressions: %w", err)
	}
	return rows, nil
}

// SumWeeklyImpressions sums the weekly rollup for weeks starting in [q.Start, q.End).
func (s *ImpressionStore) SumWeeklyImpressions(ctx context.Context, q routing.ImpressionQuery) ([]models.CampaignPerformance, error) {
	tx := s.db.WithContext(ctx).
		Model(&WeeklyCampaignStat{}).
		Select(`campaign_id,
			MAX(campaign_name) AS campaign_name,
			SUM(impressions) AS impressions,
			SUM(visits) AS visits`).
		Scopes(scopeAdvertiser(q.AgencyID, q.AdvertiserID)).
		Where("week_start >= ? AND week_start < ?", q.Start.UTC(), q.End.UTC())

	var rows []models.CampaignPerformance
	if err := tx.Group("campaign_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum weekly impressions: %w", err)
	}
	return rows, nil
}

// SaveWeeklyStat writes one weekly rollup row.
func (s *ImpressionStore) SaveWeeklyStat(ctx context.Context, stat WeeklyCampaignStat) error {
	stat.WeekStart = stat.WeekStart.UTC()
	if err := s.db.WithContext(ctx).Create(&stat).Error; err != nil {
		return fmt.Errorf("failed to save weekly stat: %w", err)
	}
	return nil
}
