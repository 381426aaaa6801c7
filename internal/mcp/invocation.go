package mcp

import (
	"context"
)

type toolFunc func(ctx context.Context, args map[string]interface{}) (*CallToolResult, error)

type registeredTool struct {
	validator *SchemaValidator
	run       toolFunc
}

// ToolInvoker validates tool arguments and dispatches to the executor.
type ToolInvoker struct {
	tools map[string]registeredTool
}

// NewToolInvoker compiles every tool schema.
func NewToolInvoker(executor *ToolExecutor) (*ToolInvoker, error) {
	runners := map[string]toolFunc{
		ToolTrafficSources:      executor.ExecuteTrafficSources,
		ToolCampaignPerformance: executor.ExecuteCampaignPerformance,
		ToolRoutingConfig:       executor.ExecuteRoutingConfig,
	}

	ti := &ToolInvoker{tools: make(map[string]registeredTool, len(runners))}
	for _, tool := range Tools() {
		validator, err := NewSchemaValidator(tool.Name, tool.InputSchema)
		if err != nil {
			return nil, err
		}
		ti.tools[tool.Name] = registeredTool{validator: validator, run: runners[tool.Name]}
	}
	return ti, nil
}

// InvokeTool validates args against the tool's schema and runs it.
func (ti *ToolInvoker) InvokeTool(ctx context.Context, toolName string, args map[string]interface{}) (*CallToolResult, error) {
	tool, ok := ti.tools[toolName]
	if !ok {
		return nil, &RPCError{
			Code:    MethodNotFound,
			Message: "Unknown tool",
			Data:    toolName,
		}
	}

	if err := tool.validator.Validate(args); err != nil {
		return nil, FormatMCPError(err)
	}

	return tool.run(ctx, args)
}

// ListTools returns the tool definitions.
func (ti *ToolInvoker) ListTools() *ListToolsResult {
	return &ListToolsResult{Tools: Tools()}
}
