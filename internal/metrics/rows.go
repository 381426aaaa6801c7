package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"attribution/internal/models"
)

// sourceTally accumulates one output row.
type sourceTally struct {
	visits    int64
	leads     int64
	purchases int64
	pageViews int64
	before    int64
	sameDay   int64
	after     int64
}

func (t *sourceTally) add(c MatchedConversion) {
	t.visits++
	t.pageViews += int64(c.PageViews)
	if c.IsLead {
		t.leads++
	}
	if c.IsPurchase {
		t.purchases++
	}
	if c.Before {
		t.before++
	}
	if c.SameDay {
		t.sameDay++
	}
	if c.After {
		t.after++
	}
}

func (t *sourceTally) avgPageViews() float64 {
	if t.visits == 0 {
		return 0
	}
	return round(float64(t.pageViews)/float64(t.visits), 2)
}

// SourceRows builds one row per attributable source with at least minVisits visits.
//
// ctv_overlap_pct is scoped to pre-conversion exposure: it uses the Before flag,
// not HadAny.
func SourceRows(conversions []MatchedConversion, minVisits int) []models.AttributionRow {
	tallies := make(map[string]*sourceTally)
	for _, c := range conversions {
		if !IsAttributable(c.Source) {
			continue
		}
		t, ok := tallies[c.Source]
		if !ok {
			t = &sourceTally{}
			tallies[c.Source] = t
		}
		t.add(c)
	}

	rows := make([]models.AttributionRow, 0, len(tallies))
	for source, t := range tallies {
		if t.visits < int64(minVisits) {
			continue
		}
		rows = append(rows, models.AttributionRow{
			Source:        source,
			Impressions:   0,
			Visits:        t.visits,
			Leads:         t.leads,
			Purchases:     t.purchases,
			AvgPageViews:  t.avgPageViews(),
			CTVOverlapPct: OverlapPct(t.before, t.visits),
			CTVBefore:     t.before,
			CTVSameDay:    t.sameDay,
			CTVAfter:      t.after,
		})
	}

	return rows
}

// ViewThroughRow builds the synthetic CTV row from every conversion whose device
// had any exposure, regardless of source or the minimum-visits filter.
func ViewThroughRow(conversions []MatchedConversion, totalExposures int64) models.AttributionRow {
	var t sourceTally
	for _, c := range conversions {
		if c.HadAny {
			t.add(c)
		}
	}

	return models.AttributionRow{
		Source:        models.SourceCTVViewThrough,
		Impressions:   totalExposures,
		Visits:        t.visits,
		Leads:         t.leads,
		Purchases:     t.purchases,
		AvgPageViews:  t.avgPageViews(),
		CTVOverlapPct: 100,
		CTVBefore:     t.visits,
		CTVSameDay:    0,
		CTVAfter:      0,
	}
}

// SortRows orders rows by descending visits, then by source label.
func SortRows(rows []models.AttributionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Visits != rows[j].Visits {
			return rows[i].Visits > rows[j].Visits
		}
		return rows[i].Source < rows[j].Source
	})
}

// OverlapPct returns before/visits*100 rounded to one decimal, 0 when visits is 0.
func OverlapPct(before, visits int64) float64 {
	if visits == 0 {
		return 0
	}
	return round(float64(before)/float64(visits)*100, 1)
}

// round rounds value to the given number of decimal places.
func round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}
