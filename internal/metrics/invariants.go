package metrics

import (
	"fmt"

	"attribution/internal/models"
)

// RowInvariant validates one attribution row.
func RowInvariant(r models.AttributionRow) error {
	// Invariant 1: counts are non-negative
	if r.Visits < 0 || r.Leads < 0 || r.Purchases < 0 || r.Impressions < 0 ||
		r.CTVBefore < 0 || r.CTVSameDay < 0 || r.CTVAfter < 0 {
		return fmt.Errorf("%s: negative count", r.Source)
	}

	// Invariant 2: flagged conversions are a subset of visits
	for name, n := range map[string]int64{
		"leads":        r.Leads,
		"purchases":    r.Purchases,
		"ctv_before":   r.CTVBefore,
		"ctv_same_day": r.CTVSameDay,
		"ctv_after":    r.CTVAfter,
	} {
		if n > r.Visits {
			return fmt.Errorf("%s: %s=%d exceeds visits=%d", r.Source, name, n, r.Visits)
		}
	}

	// Invariant 3: overlap is a percentage
	if r.CTVOverlapPct < 0 || r.CTVOverlapPct > 100 {
		return fmt.Errorf("%s: ctv_overlap_pct %f not in range [0, 100]", r.Source, r.CTVOverlapPct)
	}

	return nil
}

// RowsInvariant validates every row and the output ordering.
func RowsInvariant(rows []models.AttributionRow) error {
	for i, r := range rows {
		if err := RowInvariant(r); err != nil {
			return err
		}
		if i > 0 && rows[i-1].Visits < r.Visits {
			return fmt.Errorf("rows not sorted by visits: %s=%d before %s=%d",
				rows[i-1].Source, rows[i-1].Visits, r.Source, r.Visits)
		}
	}
	return nil
}
