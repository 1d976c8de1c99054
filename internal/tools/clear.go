package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClearBufferInput defines the input schema for the clear_buffer tool.
type ClearBufferInput struct {
	ChannelID string `json:"channel_id" jsonschema:"required,Channel whose short-term buffer to empty"`
}

// NewClearBufferHandler creates the clear_buffer tool handler. Drops
// the channel's unconsolidated turns without archiving them.
func NewClearBufferHandler(deps *Dependencies) mcp.ToolHandlerFor[ClearBufferInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ClearBufferInput) (*mcp.CallToolResult, any, error) {
		if input.ChannelID == "" {
			return ErrorResult("channel_id cannot be empty", "Provide the conversation channel id"), nil, nil
		}

		n := deps.Memory.ClearBuffer(input.ChannelID)
		deps.logger().Info("buffer cleared", "channel", input.ChannelID, "turns", n)
		return TextResult(fmt.Sprintf("cleared %d turns", n)), nil, nil
	}
}
