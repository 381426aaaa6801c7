package models

import (
	"strings"
	"time"
)

// Defaults applied to attribution requests with unspecified parameters.
var (
	EarliestSupportedDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	FarFutureDate         = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)
)

// DefaultMinVisits is the default minimum-visits threshold for per-source rows.
const DefaultMinVisits = 10

// AttributionRequest is the configuration surface of a single attribution computation.
type AttributionRequest struct {
	AdvertiserID string
	CampaignID   string // CTV campaign used for exposure matching; empty matches all
	AgencyID     string
	Start        time.Time // inclusive
	End          time.Time // exclusive
	MinVisits    int
}

// RequestParams are the raw, unparsed request parameters.
type RequestParams struct {
	AdvertiserID string
	CampaignID   string
	AgencyID     string
	StartDate    string
	EndDate      string
	MinVisits    *int
}

// ParseRequest validates raw parameters and applies defaults.
func ParseRequest(p RequestParams, defaultMinVisits int) (*AttributionRequest, error) {
	req := &AttributionRequest{
		AdvertiserID: strings.TrimSpace(p.AdvertiserID),
		CampaignID:   strings.TrimSpace(p.CampaignID),
		AgencyID:     strings.TrimSpace(p.AgencyID),
		Start:        EarliestSupportedDate,
		End:          FarFutureDate,
		MinVisits:    defaultMinVisits,
	}

	if req.AdvertiserID == "" {
		return nil, &ValidationError{Field: "advertiser_id", Message: "advertiser_id parameter is required"}
	}

	if p.StartDate != "" {
		start, err := time.Parse(DateLayout, p.StartDate)
		if err != nil {
			return nil, &ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"}
		}
		req.Start = start
	}
	if p.EndDate != "" {
		end, err := time.Parse(DateLayout, p.EndDate)
		if err != nil {
			return nil, &ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"}
		}
		req.End = end
	}
	if !req.Start.Before(req.End) {
		return nil, &ValidationError{Field: "end_date", Message: "end_date must be after start_date"}
	}

	if p.MinVisits != nil {
		req.MinVisits = *p.MinVisits
	}
	if req.MinVisits < 0 {
		return nil, &ValidationError{Field: "min_visits", Message: "must be non-negative"}
	}

	return req, nil
}

// Validate checks an already-built request.
func (r *AttributionRequest) Validate() error {
	if strings.TrimSpace(r.AdvertiserID) == "" {
		return &ValidationError{Field: "advertiser_id", Message: "advertiser_id parameter is required"}
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return &ValidationError{Field: "start_date", Message: "date range is required"}
	}
	if !r.Start.Before(r.End) {
		return &ValidationError{Field: "end_date", Message: "end_date must be after start_date"}
	}
	if r.MinVisits < 0 {
		return &ValidationError{Field: "min_visits", Message: "must be non-negative"}
	}
	return nil
}
