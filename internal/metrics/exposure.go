package metrics

import (
	"sort"
	"time"

	"attribution/internal/models"
)

// DefaultCTVWindow is the lookback/lookahead around a conversion.
const DefaultCTVWindow = 28 * 24 * time.Hour

// ExposureFlags are the independent any-match flags for one conversion.
type ExposureFlags struct {
	Before  bool // exposure in [T-W, T)
	SameDay bool // exposure on the conversion's calendar date
	After   bool // exposure in (T, T+W]
	HadAny  bool // any exposure in the queried set
}

// ExposureIndex holds sorted exposure timestamps per normalized device id.
type ExposureIndex struct {
	byDevice map[string][]time.Time
	total    int64
}

// NewExposureIndex indexes exposures by normalized device id. Exposures with
// an empty device id are counted in Total but never matched.
func NewExposureIndex(exposures []models.ExposureEvent) *ExposureIndex {
	idx := &ExposureIndex{
		byDevice: make(map[string][]time.Time),
		total:    int64(len(exposures)),
	}

	for _, e := range exposures {
		id := NormalizeIdentity(e.DeviceID)
		if id == "" {
			continue
		}
		idx.byDevice[id] = append(idx.byDevice[id], e.Timestamp)
	}

	for id, ts := range idx.byDevice {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
		idx.byDevice[id] = ts
	}

	return idx
}

// Total returns the number of exposure events in the queried window.
func (x *ExposureIndex) Total() int64 {
	return x.total
}

// Devices returns the number of distinct matchable devices.
func (x *ExposureIndex) Devices() int {
	return len(x.byDevice)
}

// Match computes the exposure flags for a device converting at ts on date.
func (x *ExposureIndex) Match(deviceID string, ts time.Time, date time.Time, window time.Duration) ExposureFlags {
	id := NormalizeIdentity(deviceID)
	if id == "" {
		return ExposureFlags{}
	}
	times := x.byDevice[id]
	if len(times) == 0 {
		return ExposureFlags{}
	}

	return ExposureFlags{
		Before:  anyIn(times, ts.Add(-window), true, ts, false),
		SameDay: anyIn(times, date, true, date.Add(24*time.Hour), false),
		After:   anyIn(times, ts, false, ts.Add(window), true),
		HadAny:  true,
	}
}

// anyIn reports whether sorted times holds a value between lo and hi with the
// given bound inclusivity.
func anyIn(times []time.Time, lo time.Time, loIncl bool, hi time.Time, hiIncl bool) bool {
	i := sort.Search(len(times), func(i int) bool {
		if loIncl {
			return !times[i].Before(lo)
		}
		return times[i].After(lo)
	})
	if i == len(times) {
		return false
	}
	if hiIncl {
		return !times[i].After(hi)
	}
	return times[i].Before(hi)
}

// MatchedConversion is an enriched conversion with its exposure flags.
type MatchedConversion struct {
	EnrichedConversion
	ExposureFlags
}

// MatchExposures computes exposure flags for every conversion.
func MatchExposures(conversions []EnrichedConversion, idx *ExposureIndex, window time.Duration) []MatchedConversion {
	out := make([]MatchedConversion, len(conversions))
	for i, c := range conversions {
		date := c.Date
		if date.IsZero() {
			date = c.Timestamp
		}
		out[i] = MatchedConversion{
			EnrichedConversion: c,
			ExposureFlags:      idx.Match(c.DeviceID, c.Timestamp, models.DateOf(date), window),
		}
	}
	return out
}
