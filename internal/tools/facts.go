package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lamina-ai/recall-go/internal/models"
)

// QueryFactsInput defines the input schema for the query_facts tool.
type QueryFactsInput struct {
	Subject string `json:"subject,omitempty" jsonschema:"Filter by fact subject"`
	Type    string `json:"type,omitempty" jsonschema:"Filter by fact type (user_preference, personal_info, world_knowledge, general)"`
}

type queryFactsResult struct {
	Facts []models.Fact `json:"facts"`
	Count int           `json:"count"`
}

// NewQueryFactsHandler creates the query_facts tool handler. Results
// are ordered most confident first.
func NewQueryFactsHandler(deps *Dependencies) mcp.ToolHandlerFor[QueryFactsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input QueryFactsInput) (*mcp.CallToolResult, any, error) {
		facts, err := deps.Memory.QueryFacts(ctx, input.Subject, input.Type)
		if err != nil {
			deps.logger().Error("fact query failed", "error", err)
			return ErrorResult("Fact query failed", "The fact store may be unreachable"), nil, nil
		}
		return JSONResult(queryFactsResult{Facts: facts, Count: len(facts)}), nil, nil
	}
}
