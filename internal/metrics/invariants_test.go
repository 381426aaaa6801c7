package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attribution/internal/models"
)

func TestRowInvariant(t *testing.T) {
	ok := models.AttributionRow{Source: models.SourceMeta, Visits: 4, Leads: 2, CTVBefore: 1, CTVOverlapPct: 25}
	assert.NoError(t, RowInvariant(ok))

	tests := []struct {
		name   string
		mutate func(*models.AttributionRow)
	}{
		{"negative visits", func(r *models.AttributionRow) { r.Visits = -1 }},
		{"leads exceed visits", func(r *models.AttributionRow) { r.Leads = 5 }},
		{"before exceeds visits", func(r *models.AttributionRow) { r.CTVBefore = 5 }},
		{"overlap above 100", func(r *models.AttributionRow) { r.CTVOverlapPct = 100.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ok
			tt.mutate(&r)
			assert.Error(t, RowInvariant(r))
		})
	}
}

func TestRowsInvariant_Ordering(t *testing.T) {
	rows := []models.AttributionRow{
		{Source: models.SourceDirect, Visits: 3},
		{Source: models.SourceGoogleAds, Visits: 12},
	}
	assert.Error(t, RowsInvariant(rows))

	SortRows(rows)
	assert.NoError(t, RowsInvariant(rows))
}

// Attribute output satisfies the row invariants across mixed inputs.
func TestAttribute_SatisfiesInvariants(t *testing.T) {
	referrers := []string{
		"https://www.google.com/?gclid=abc",
		"https://l.facebook.com/l.php",
		"",
		"-",
		"https://partner.example/?_ef_transaction_id=1",
		"http://localhost:3000/",
		"https://news.example.org/",
	}

	var visits []models.VisitEvent
	var convs []models.ConversionEvent
	var exposures []models.ExposureEvent
	for i := 0; i < 140; i++ {
		ts := day0.Add(time.Duration(i) * 37 * time.Minute)
		id := fmt.Sprintf("imp-%d", i)
		visits = append(visits, visit(fmt.Sprintf("10.0.%d.%d", i%5, i%11), referrers[i%len(referrers)], id, ts))
		if i%3 != 0 {
			c := conversion(fmt.Sprintf("dev-%d", i%17), id, ts.Add(time.Minute))
			c.IsLead = i%4 == 0
			c.IsPurchase = i%9 == 0
			convs = append(convs, c)
		}
	}
	for i := 0; i < 17; i += 2 {
		exposures = append(exposures, exposure(fmt.Sprintf("DEV%d", i), day0.Add(time.Duration(i-8)*24*time.Hour)))
	}

	for _, minVisits := range []int{0, 1, 10, 50} {
		rows := Attribute(append([]models.VisitEvent(nil), visits...), convs, exposures, Options{MinVisits: minVisits})
		require.NoError(t, RowsInvariant(rows), "min_visits=%d", minVisits)
		_, ok := findRow(rows, models.SourceCTVViewThrough)
		assert.True(t, ok)
	}
}
