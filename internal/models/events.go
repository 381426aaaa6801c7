package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date format used in requests, cache keys and grouping keys.
const DateLayout = "2006-01-02"

// VisitEvent is a single pixel-visit (page view) on the advertiser's site.
type VisitEvent struct {
	ClientID     string    `json:"client_id"`     // originating network address
	Referrer     string    `json:"referrer"`      // empty when the pixel saw no referrer
	Timestamp    time.Time `json:"timestamp"`
	Date         time.Time `json:"date"`          // UTC calendar date of Timestamp
	ImpressionID string    `json:"impression_id"` // unique per event
	Source       string    `json:"source"`        // filled in by classification
}

// ConversionEvent is one row of the site-visit-to-conversion log.
type ConversionEvent struct {
	DeviceID     string    `json:"device_id"`     // normalized MAID
	ImpressionID string    `json:"impression_id"` // may not resolve to any VisitEvent
	Timestamp    time.Time `json:"timestamp"`
	Date         time.Time `json:"date"`
	IsLead       bool      `json:"is_lead"`
	IsPurchase   bool      `json:"is_purchase"`
}

// ExposureEvent is one CTV ad exposure.
type ExposureEvent struct {
	DeviceID  string    `json:"device_id"` // normalized MAID
	Timestamp time.Time `json:"timestamp"`
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Event types carried on the ingest stream.
const (
	EventTypeVisit      = "visit"
	EventTypeConversion = "conversion"
	EventTypeExposure   = "exposure"
)

// EventEnvelope is the standardized wrapper for events arriving on the ingest stream.
type EventEnvelope struct {
	Type         string          `json:"type"` // visit, conversion, exposure
	AgencyID     string          `json:"agency_id"`
	AdvertiserID string          `json:"advertiser_id"`
	CampaignID   string          `json:"campaign_id,omitempty"`
	TsEvent      time.Time       `json:"ts_event"`
	Payload      json.RawMessage `json:"payload"`
}

// VisitPayload is the payload of a visit envelope.
type VisitPayload struct {
	ClientID     string `json:"client_id"`
	Referrer     string `json:"referrer"`
	ImpressionID string `json:"impression_id"`
}

// ConversionPayload is the payload of a conversion envelope.
type ConversionPayload struct {
	DeviceID     string `json:"device_id"`
	ImpressionID string `json:"impression_id"`
	IsLead       bool   `json:"is_lead"`
	IsPurchase   bool   `json:"is_purchase"`
}

// ExposurePayload is the payload of an exposure envelope.
type ExposurePayload struct {
	DeviceID     string `json:"device_id"`
	ImpressionID string `json:"impression_id"`
	CampaignName string `json:"campaign_name,omitempty"`
}

// EventQuery scopes the three event-source reads. End is exclusive.
type EventQuery struct {
	AgencyID     string
	AdvertiserID string
	CampaignID   string // restricts exposures only; empty matches all campaigns
	Start        time.Time
	End          time.Time
}

// Query returns the event-source scope of a request.
func (r *AttributionRequest) Query() EventQuery {
	return EventQuery{
		AgencyID:     r.AgencyID,
		AdvertiserID: r.AdvertiserID,
		CampaignID:   r.CampaignID,
		Start:        r.Start,
		End:          r.End,
	}
}
