package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ConsolidateInput defines the input schema for the consolidate tool.
type ConsolidateInput struct {
	ChannelID string `json:"channel_id,omitempty" jsonschema:"Channel to consolidate; empty sweeps all channels"`
}

// NewConsolidateHandler creates the consolidate tool handler: a forced,
// synchronous consolidation run. Partial failures come back in the
// result's error list, not as a tool error.
func NewConsolidateHandler(deps *Dependencies) mcp.ToolHandlerFor[ConsolidateInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ConsolidateInput) (*mcp.CallToolResult, any, error) {
		if input.ChannelID == "" {
			result := deps.Memory.ConsolidateAll(ctx)
			return JSONResult(result), nil, nil
		}

		result, err := deps.Memory.Consolidate(ctx, input.ChannelID)
		if err != nil {
			deps.logger().Error("consolidation failed", "channel", input.ChannelID, "error", err)
			return ErrorResult("Consolidation failed", err.Error()), nil, nil
		}
		return JSONResult(result), nil, nil
	}
}
