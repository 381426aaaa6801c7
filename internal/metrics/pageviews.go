package metrics

import "attribution/internal/models"

// PageViewKey identifies one (client, day, source) group.
//
// ClientID is the visit's network address, not a durable user id: several users
// behind one address on the same day are counted together.
type PageViewKey struct {
	ClientID string
	Date     string
	Source   string
}

// PageViewCounts holds visit-event counts per PageViewKey.
type PageViewCounts map[PageViewKey]int

// Lookup returns the count for a group, or zero when absent.
func (p PageViewCounts) Lookup(clientID string, date string, source string) int {
	return p[PageViewKey{ClientID: clientID, Date: date, Source: source}]
}

// CountPageViews groups classified visits by (client, date, source), skipping
// Other and Internal traffic.
func CountPageViews(visits []models.VisitEvent) PageViewCounts {
	counts := make(PageViewCounts)
	for _, v := range visits {
		if !IsAttributable(v.Source) {
			continue
		}
		key := PageViewKey{
			ClientID: v.ClientID,
			Date:     v.Date.Format(models.DateLayout),
			Source:   v.Source,
		}
		counts[key]++
	}
	return counts
}

// DedupeVisits keeps one visit per impression id: the earliest, and on equal
// timestamps the one seen first. Visits without an impression id are kept.
// Output order follows the first occurrence of each id.
func DedupeVisits(visits []models.VisitEvent) []models.VisitEvent {
	idx := make(map[string]int, len(visits))
	out := make([]models.VisitEvent, 0, len(visits))

	for _, v := range visits {
		if v.ImpressionID == "" {
			out = append(out, v)
			continue
		}
		if i, ok := idx[v.ImpressionID]; ok {
			if v.Timestamp.Before(out[i].Timestamp) {
				out[i] = v
			}
			continue
		}
		idx[v.ImpressionID] = len(out)
		out = append(out, v)
	}

	return out
}
