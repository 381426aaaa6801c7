package models

import "time"

// Traffic source labels produced by the classifier.
const (
	SourceGoogleAds = "Google Ads"
	SourceMeta      = "Meta/Facebook"
	SourceAffiliate = "Affiliate Network"
	SourceInternal  = "Internal"
	SourceDirect    = "Direct"
	SourceOther     = "Other"

	// SourceCTVViewThrough labels the synthetic row built from the CTV-exposed population.
	SourceCTVViewThrough = "CTV View Through"
)

// AttributionRow is one aggregated output record.
type AttributionRow struct {
	Source        string  `json:"source"`
	Impressions   int64   `json:"impressions"`
	Visits        int64   `json:"visits"`
	Leads         int64   `json:"leads"`
	Purchases     int64   `json:"purchases"`
	AvgPageViews  float64 `json:"avg_page_views"`
	CTVOverlapPct float64 `json:"ctv_overlap_pct"`
	CTVBefore     int64   `json:"ctv_before"`
	CTVSameDay    int64   `json:"ctv_same_day"`
	CTVAfter      int64   `json:"ctv_after"`
}

// AttributionReport wraps the ordered attribution rows with request metadata.
type AttributionReport struct {
	AdvertiserID string           `json:"advertiser_id"`
	CampaignID   string           `json:"campaign_id,omitempty"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	MinVisits    int              `json:"min_visits"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Rows         []AttributionRow `json:"rows"`
}

// CampaignPerformance is one per-campaign impression/visit record.
type CampaignPerformance struct {
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Impressions  int64  `json:"impressions"`
	Visits       int64  `json:"visits"`
}

// CampaignPerformanceReport is the result of a strategy-routed impression computation.
type CampaignPerformanceReport struct {
	AdvertiserID string                `json:"advertiser_id"`
	Strategy     Strategy              `json:"strategy"`
	Skipped      bool                  `json:"skipped"` // no impression join for this advertiser
	Rows         []CampaignPerformance `json:"rows"`
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// TrafficSourcesResponse is the attribution table returned to API callers,
// with the routing strategy that gated it.
type TrafficSourcesResponse struct {
	AttributionReport
	Strategy Strategy `json:"strategy"`
	Message  string   `json:"message,omitempty"`
}
