package mcp

import (
	"context"
	"encoding/json"

	"attribution/internal/models"
)

// Reporter is the read surface the tools expose.
type Reporter interface {
	TrafficSources(ctx context.Context, req *models.AttributionRequest) (*models.TrafficSourcesResponse, error)
	CampaignPerformance(ctx context.Context, req *models.AttributionRequest) (*models.CampaignPerformanceReport, error)
	RoutingConfig(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error)
}

// ToolExecutor runs validated tool calls against a Reporter.
type ToolExecutor struct {
	reporter         Reporter
	defaultMinVisits int
}

// NewToolExecutor creates a tool executor.
func NewToolExecutor(reporter Reporter, defaultMinVisits int) *ToolExecutor {
	return &ToolExecutor{
		reporter:         reporter,
		defaultMinVisits: defaultMinVisits,
	}
}

// ExecuteTrafficSources runs get_traffic_sources.
func (te *ToolExecutor) ExecuteTrafficSources(ctx context.Context, args map[string]interface{}) (*CallToolResult, error) {
	req, err := models.ParseRequest(requestParams(args), te.defaultMinVisits)
	if err != nil {
		return nil, err
	}

	resp, err := te.reporter.TrafficSources(ctx, req)
	if err != nil {
		return nil, err
	}
	return textResult(resp)
}

// ExecuteCampaignPerformance runs get_campaign_performance.
func (te *ToolExecutor) ExecuteCampaignPerformance(ctx context.Context, args map[string]interface{}) (*CallToolResult, error) {
	req, err := models.ParseRequest(requestParams(args), te.defaultMinVisits)
	if err != nil {
		return nil, err
	}

	report, err := te.reporter.CampaignPerformance(ctx, req)
	if err != nil {
		return nil, err
	}
	return textResult(report)
}

// ExecuteRoutingConfig runs get_routing_config.
func (te *ToolExecutor) ExecuteRoutingConfig(ctx context.Context, args map[string]interface{}) (*CallToolResult, error) {
	cfg, err := te.reporter.RoutingConfig(ctx, stringArg(args, "advertiser_id"))
	if err != nil {
		return nil, err
	}
	return textResult(cfg)
}

func requestParams(args map[string]interface{}) models.RequestParams {
	p := models.RequestParams{
		AdvertiserID: stringArg(args, "advertiser_id"),
		CampaignID:   stringArg(args, "campaign_id"),
		AgencyID:     stringArg(args, "agency_id"),
		StartDate:    stringArg(args, "start_date"),
		EndDate:      stringArg(args, "end_date"),
	}
	// JSON numbers decode as float64; the schema has already checked it is integral.
	if v, ok := args["min_visits"].(float64); ok {
		n := int(v)
		p.MinVisits = &n
	}
	return p
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

// textResult wraps v as MCP text content.
func textResult(v interface{}) (*CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, &RPCError{
			Code:    InternalError,
			Message: "Failed to serialize result",
			Data:    err.Error(),
		}
	}
	return &CallToolResult{
		Content: []TextContent{{Type: "text", Text: string(body)}},
	}, nil
}
