package mcp

const datePattern = `^\d{4}-\d{2}-\d{2}$`

func advertiserProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Advertiser identifier",
		"minLength":   1,
	}
}

func dateProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"pattern":     datePattern,
	}
}

// TrafficSourcesToolSchema returns the JSON Schema for get_traffic_sources arguments.
func TrafficSourcesToolSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"advertiser_id": advertiserProperty(),
			"campaign_id": map[string]interface{}{
				"type":        "string",
				"description": "CTV campaign used for exposure matching; omit to match all campaigns",
			},
			"agency_id": map[string]interface{}{
				"type": "string",
			},
			"start_date": dateProperty("Inclusive start date (YYYY-MM-DD), default 2020-01-01"),
			"end_date":   dateProperty("Exclusive end date (YYYY-MM-DD), default 2099-12-31"),
			"min_visits": map[string]interface{}{
				"type":        "integer",
				"description": "Minimum visits for a traffic source to be reported",
				"minimum":     0,
			},
		},
		"required":             []string{"advertiser_id"},
		"additionalProperties": false,
	}
}

// CampaignPerformanceToolSchema returns the JSON Schema for get_campaign_performance arguments.
func CampaignPerformanceToolSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"advertiser_id": advertiserProperty(),
			"agency_id": map[string]interface{}{
				"type": "string",
			},
			"start_date": dateProperty("Inclusive start date (YYYY-MM-DD)"),
			"end_date":   dateProperty("Exclusive end date (YYYY-MM-DD)"),
		},
		"required":             []string{"advertiser_id"},
		"additionalProperties": false,
	}
}

// RoutingConfigToolSchema returns the JSON Schema for get_routing_config arguments.
func RoutingConfigToolSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"advertiser_id": advertiserProperty(),
		},
		"required":             []string{"advertiser_id"},
		"additionalProperties": false,
	}
}

// Tool names.
const (
	ToolTrafficSources      = "get_traffic_sources"
	ToolCampaignPerformance = "get_campaign_performance"
	ToolRoutingConfig       = "get_routing_config"
)

// Tools returns every tool definition, in listing order.
func Tools() []Tool {
	return []Tool{
		{
			Name:        ToolTrafficSources,
			Description: "Attribute site visits to traffic sources with CTV exposure overlap for an advertiser and date range",
			InputSchema: TrafficSourcesToolSchema(),
		},
		{
			Name:        ToolCampaignPerformance,
			Description: "Per-campaign impressions and visits, counted with the advertiser's configured impression strategy",
			InputSchema: CampaignPerformanceToolSchema(),
		},
		{
			Name:        ToolRoutingConfig,
			Description: "Resolved routing configuration (impression strategy and exposure source) for an advertiser",
			InputSchema: RoutingConfigToolSchema(),
		},
	}
}
