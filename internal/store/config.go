package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attribution/internal/models"
)

// StatusActive marks a routing entry that is in effect.
const StatusActive = "ACTIVE"

// ConfigStore reads advertiser routing entries.
type ConfigStore struct {
	db *gorm.DB
}

// NewConfigStore creates a config store.
func NewConfigStore(db *gorm.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// GetRoutingConfig returns the active entry for an advertiser, or models.ErrConfigNotFound.
func (s *ConfigStore) GetRoutingConfig(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error) {
	var rec AdvertiserConfigRecord
	err := s.db.WithContext(ctx).
		Where("advertiser_id = ? AND status = ?", advertiserID, StatusActive).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AdvertiserRoutingConfig{}, models.ErrConfigNotFound
	}
	if err != nil {
		return models.AdvertiserRoutingConfig{}, fmt.Errorf("failed to query advertiser config: %w", err)
	}

	strategy, err := models.ParseStrategy(rec.ImpressionJoinStrategy)
	if err != nil {
		return models.AdvertiserRoutingConfig{}, fmt.Errorf("advertiser %s: %w", advertiserID, err)
	}
	source, err := models.ParseExposureSource(rec.ExposureSource)
	if err != nil {
		return models.AdvertiserRoutingConfig{}, fmt.Errorf("advertiser %s: %w", advertiserID, err)
	}

	return models.AdvertiserRoutingConfig{
		AdvertiserID:   rec.AdvertiserID,
		Strategy:       strategy,
		ExposureSource: source,
	}, nil
}

// UpsertRoutingConfig writes an active entry, replacing any existing one.
func (s *ConfigStore) UpsertRoutingConfig(ctx context.Context, cfg models.AdvertiserRoutingConfig) error {
	rec := AdvertiserConfigRecord{
		AdvertiserID:           cfg.AdvertiserID,
		ImpressionJoinStrategy: string(cfg.Strategy),
		ExposureSource:         string(cfg.ExposureSource),
		Status:                 StatusActive,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "advertiser_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"impression_join_strategy", "exposure_source", "status", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert advertiser config: %w", err)
	}
	return nil
}
