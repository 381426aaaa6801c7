package metrics

import (
	"strings"

	"attribution/internal/models"
)

// SourceRule maps any of its markers (case-insensitive substrings) to a label.
type SourceRule struct {
	Label   string
	Markers []string
}

// SourceRules is an ordered rule list; the first matching rule wins.
type SourceRules []SourceRule

// DefaultSourceRules are the referrer markers used for pixel traffic.
var DefaultSourceRules = SourceRules{
	{Label: models.SourceGoogleAds, Markers: []string{"doubleclick", "syndicatedsearch", "gclid", "googleadservices"}},
	{Label: models.SourceMeta, Markers: []string{"facebook", "fbapp", "fb.com", "fbclid"}},
	{Label: models.SourceAffiliate, Markers: []string{"_ef_transaction"}},
	{Label: models.SourceInternal, Markers: []string{"localhost", "127.0.0.1"}},
}

// noReferrer is the placeholder the pixel writes when the browser sent no referrer.
const noReferrer = "-"

// Classify maps a referrer to exactly one source label.
func (rules SourceRules) Classify(referrer string) string {
	ref := strings.ToLower(strings.TrimSpace(referrer))

	if ref != "" && ref != noReferrer {
		for _, rule := range rules {
			for _, marker := range rule.Markers {
				if strings.Contains(ref, marker) {
					return rule.Label
				}
			}
		}
		return models.SourceOther
	}

	return models.SourceDirect
}

// ClassifyReferrer classifies a referrer with DefaultSourceRules.
func ClassifyReferrer(referrer string) string {
	return DefaultSourceRules.Classify(referrer)
}

// ClassifyVisits sets Source on every visit and returns the same slice.
func ClassifyVisits(rules SourceRules, visits []models.VisitEvent) []models.VisitEvent {
	for i := range visits {
		visits[i].Source = rules.Classify(visits[i].Referrer)
	}
	return visits
}

// IsAttributable reports whether a source label may appear as a per-source row.
func IsAttributable(source string) bool {
	switch source {
	case "", models.SourceOther, models.SourceInternal:
		return false
	}
	return true
}
