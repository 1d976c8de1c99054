package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BuildContextInput defines the input schema for the build_context tool.
type BuildContextInput struct {
	ChannelID     string `json:"channel_id" jsonschema:"required,Channel to assemble context for"`
	Text          string `json:"text,omitempty" jsonschema:"The input text being replied to"`
	ParticipantID string `json:"participant_id,omitempty" jsonschema:"Personalize archive retrieval to this participant"`
}

// NewBuildContextHandler creates the build_context tool handler: the
// read side the reply generator consumes. Unavailable tiers degrade to
// empty collections, never an error.
func NewBuildContextHandler(deps *Dependencies) mcp.ToolHandlerFor[BuildContextInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BuildContextInput) (*mcp.CallToolResult, any, error) {
		if input.ChannelID == "" {
			return ErrorResult("channel_id cannot be empty", "Provide the conversation channel id"), nil, nil
		}

		bundle := deps.Memory.BuildContext(ctx, input.ChannelID, input.Text, input.ParticipantID)
		deps.logger().Debug("context assembled",
			"channel", input.ChannelID,
			"recent", len(bundle.Recent),
			"relevant", len(bundle.Relevant))

		return JSONResult(bundle), nil, nil
	}
}
