package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"attribution/internal/models"
)

// EventStore serves the visit, conversion and exposure reads and persists ingested events.
type EventStore struct {
	db *gorm.DB
}

// NewEventStore creates an event store.
func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) window(ctx context.Context, q models.EventQuery) *gorm.DB {
	return s.db.WithContext(ctx).
		Scopes(scopeAdvertiser(q.AgencyID, q.AdvertiserID)).
		Where("ts >= ? AND ts < ?", q.Start.UTC(), q.End.UTC())
}

// Visits returns the page views in [q.Start, q.End).
func (s *EventStore) Visits(ctx context.Context, q models.EventQuery) ([]models.VisitEvent, error) {
	var records []VisitRecord
	if err := s.window(ctx, q).Order("ts, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}

	out := make([]models.VisitEvent, 0, len(records))
	for _, r := range records {
		ts := r.Ts.UTC()
		out = append(out, models.VisitEvent{
			ClientID:     r.ClientID,
			Referrer:     r.Referrer,
			Timestamp:    ts,
			Date:         models.DateOf(ts),
			ImpressionID: r.ImpressionID,
		})
	}
	return out, nil
}

// Conversions returns the conversion rows in [q.Start, q.End).
func (s *EventStore) Conversions(ctx context.Context, q models.EventQuery) ([]models.ConversionEvent, error) {
	var records []ConversionRecord
	if err := s.window(ctx, q).Order("ts, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}

	out := make([]models.ConversionEvent, 0, len(records))
	for _, r := range records {
		ts := r.Ts.UTC()
		out = append(out, models.ConversionEvent{
			DeviceID:     r.DeviceID,
			ImpressionID: r.ImpressionID,
			Timestamp:    ts,
			Date:         models.DateOf(ts),
			IsLead:       r.IsLead,
			IsPurchase:   r.IsPurchase,
		})
	}
	return out, nil
}

// Exposures returns the CTV exposures in [q.Start, q.End), restricted to q.CampaignID when set.
func (s *EventStore) Exposures(ctx context.Context, q models.EventQuery) ([]models.ExposureEvent, error) {
	tx := s.window(ctx, q)
	if q.CampaignID != "" {
		tx = tx.Where("campaign_id = ?", q.CampaignID)
	}

	var records []ImpressionRecord
	if err := tx.Select("device_id", "ts").Order("ts, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query exposures: %w", err)
	}

	out := make([]models.ExposureEvent, 0, len(records))
	for _, r := range records {
		out = append(out, models.ExposureEvent{DeviceID: r.DeviceID, Timestamp: r.Ts.UTC()})
	}
	return out, nil
}

// SaveVisit persists one ingested page view.
func (s *EventStore) SaveVisit(ctx context.Context, env models.EventEnvelope, p models.VisitPayload) error {
	rec := VisitRecord{
		AgencyID:     env.AgencyID,
		AdvertiserID: env.AdvertiserID,
		ClientID:     p.ClientID,
		Referrer:     p.Referrer,
		ImpressionID: p.ImpressionID,
		Ts:           utc(env.TsEvent),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save visit: %w", err)
	}
	return nil
}

// SaveConversion persists one ingested conversion.
func (s *EventStore) SaveConversion(ctx context.Context, env models.EventEnvelope, p models.ConversionPayload) error {
	rec := ConversionRecord{
		AgencyID:     env.AgencyID,
		AdvertiserID: env.AdvertiserID,
		DeviceID:     p.DeviceID,
		ImpressionID: p.ImpressionID,
		IsLead:       p.IsLead,
		IsPurchase:   p.IsPurchase,
		Ts:           utc(env.TsEvent),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save conversion: %w", err)
	}
	return nil
}

// SaveExposure persists one ingested CTV impression.
func (s *EventStore) SaveExposure(ctx context.Context, env models.EventEnvelope, p models.ExposurePayload) error {
	rec := ImpressionRecord{
		AgencyID:     env.AgencyID,
		AdvertiserID: env.AdvertiserID,
		CampaignID:   env.CampaignID,
		CampaignName: p.CampaignName,
		ImpressionID: p.ImpressionID,
		DeviceID:     p.DeviceID,
		Ts:           utc(env.TsEvent),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save exposure: %w", err)
	}
	return nil
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
