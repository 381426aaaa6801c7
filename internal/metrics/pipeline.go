package metrics

import (
	"time"

	"attribution/internal/models"
)

// Options tune a single attribution run.
type Options struct {
	Rules     SourceRules   // defaults to DefaultSourceRules
	Window    time.Duration // defaults to DefaultCTVWindow
	MinVisits int
}

// Attribute runs classification, page-view counting, the conversion join, CTV
// matching and aggregation over one request's events. Visits are classified in place.
func Attribute(visits []models.VisitEvent, conversions []models.ConversionEvent, exposures []models.ExposureEvent, opts Options) []models.AttributionRow {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultSourceRules
	}
	window := opts.Window
	if window <= 0 {
		window = DefaultCTVWindow
	}

	classified := DedupeVisits(ClassifyVisits(rules, visits))
	pageViews := CountPageViews(classified)
	enriched := JoinConversions(conversions, IndexVisits(classified), pageViews)

	exposureIdx := NewExposureIndex(exposures)
	matched := MatchExposures(enriched, exposureIdx, window)

	rows := SourceRows(matched, opts.MinVisits)
	rows = append(rows, ViewThroughRow(matched, exposureIdx.Total()))
	SortRows(rows)

	return rows
}
