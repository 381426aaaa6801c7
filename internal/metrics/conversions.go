package metrics

import "attribution/internal/models"

// EnrichedConversion is a conversion with its attributed source and engagement depth.
type EnrichedConversion struct {
	models.ConversionEvent
	Source    string // empty when the impression id matched no visit
	ClientID  string
	PageViews int
}

// Attributed reports whether the conversion joined to a visit.
func (c EnrichedConversion) Attributed() bool {
	return c.Source != ""
}

// IndexVisits builds impression id -> visit. Visits are expected to be deduplicated
// already; if not, the first visit for an id is kept.
func IndexVisits(visits []models.VisitEvent) map[string]models.VisitEvent {
	idx := make(map[string]models.VisitEvent, len(visits))
	for _, v := range visits {
		if v.ImpressionID == "" {
			continue
		}
		if _, ok := idx[v.ImpressionID]; !ok {
			idx[v.ImpressionID] = v
		}
	}
	return idx
}

// JoinConversions attaches source, client and page-view count to each conversion.
// Unmatched conversions keep an empty source and zero page views.
func JoinConversions(conversions []models.ConversionEvent, visitIdx map[string]models.VisitEvent, pageViews PageViewCounts) []EnrichedConversion {
	out := make([]EnrichedConversion, 0, len(conversions))

	for _, c := range conversions {
		ec := EnrichedConversion{ConversionEvent: c}

		if v, ok := visitIdx[c.ImpressionID]; ok && c.ImpressionID != "" {
			ec.Source = v.Source
			ec.ClientID = v.ClientID
			ec.PageViews = pageViews.Lookup(v.ClientID, c.Date.Format(models.DateLayout), v.Source)
		}

		out = append(out, ec)
	}

	return out
}
