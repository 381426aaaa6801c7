package models

import (
	"fmt"
	"strings"
)

// Strategy selects how impressions are counted for an advertiser.
type Strategy string

const (
	// StrategyRowLevelDistinct counts distinct rows of a row-level exposure log.
	StrategyRowLevelDistinct Strategy = "ROW_LEVEL_DISTINCT"
	// StrategyPreAggregatedSum sums weekly rollup values delivered by the upstream feed.
	StrategyPreAggregatedSum Strategy = "PRE_AGGREGATED_SUM"
	// StrategyNoImpressionJoin skips impression computation (web-pixel-only advertisers).
	StrategyNoImpressionJoin Strategy = "NO_IMPRESSION_JOIN"
)

// DefaultStrategy is used for advertisers without a routing entry.
const DefaultStrategy = StrategyPreAggregatedSum

// legacyStrategies maps the names still present in the advertiser config table.
var legacyStrategies = map[string]Strategy{
	"ADM_PREFIX": StrategyRowLevelDistinct,
	"PCM_4KEY":   StrategyPreAggregatedSum,
	"DIRECT_AG":  StrategyNoImpressionJoin,
}

// ParseStrategy parses a stored strategy name, accepting legacy names.
func ParseStrategy(s string) (Strategy, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch Strategy(name) {
	case StrategyRowLevelDistinct, StrategyPreAggregatedSum, StrategyNoImpressionJoin:
		return Strategy(name), nil
	}
	if st, ok := legacyStrategies[name]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown impression join strategy: %q", s)
}

// ExposureSource classifies where an advertiser's exposure data comes from.
// Routing never modifies it.
type ExposureSource string

const (
	ExposureImpression ExposureSource = "IMPRESSION"
	ExposureWeb        ExposureSource = "WEB"
	ExposureOOH        ExposureSource = "OOH"
)

// ParseExposureSource parses a stored exposure source; empty means IMPRESSION.
func ParseExposureSource(s string) (ExposureSource, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch ExposureSource(name) {
	case "":
		return ExposureImpression, nil
	case ExposureImpression, ExposureWeb, ExposureOOH:
		return ExposureSource(name), nil
	}
	return "", fmt.Errorf("unknown exposure source: %q", s)
}

// AdvertiserRoutingConfig is the per-advertiser routing configuration.
type AdvertiserRoutingConfig struct {
	AdvertiserID   string         `json:"advertiser_id"`
	Strategy       Strategy       `json:"impression_join_strategy"`
	ExposureSource ExposureSource `json:"exposure_source"`
	// Default is true when no entry existed and the config was synthesized.
	Default bool `json:"default"`
}

// DefaultRoutingConfig returns the config used when an advertiser has no entry.
func DefaultRoutingConfig(advertiserID string, strategy Strategy) AdvertiserRoutingConfig {
	return AdvertiserRoutingConfig{
		AdvertiserID:   advertiserID,
		Strategy:       strategy,
		ExposureSource: ExposureImpression,
		Default:        true,
	}
}
