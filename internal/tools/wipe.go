package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// WipeMemoryInput defines the input schema for the wipe_memory tool.
// Confirmation is mandatory; this destroys all three tiers.
type WipeMemoryInput struct {
	Confirm bool `json:"confirm" jsonschema:"required,Must be true to proceed"`
}

// NewWipeMemoryHandler creates the wipe_memory tool handler. Partial
// failures still report the counts that completed.
func NewWipeMemoryHandler(deps *Dependencies) mcp.ToolHandlerFor[WipeMemoryInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input WipeMemoryInput) (*mcp.CallToolResult, any, error) {
		if !input.Confirm {
			return ErrorResult("Wipe not confirmed", "Pass confirm=true to erase all memory tiers"), nil, nil
		}

		result := deps.Memory.Wipe(ctx)
		return JSONResult(result), nil, nil
	}
}
