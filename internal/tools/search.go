package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lamina-ai/recall-go/internal/models"
)

const maxSearchLimit = 100

// SearchArchiveInput defines the input schema for the search_archive tool.
type SearchArchiveInput struct {
	Query         string `json:"query,omitempty" jsonschema:"Free-text query; empty falls back to a generic query"`
	ParticipantID string `json:"participant_id,omitempty" jsonschema:"Filter to one participant's exchanges"`
	ChannelID     string `json:"channel_id,omitempty" jsonschema:"Filter to one channel"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Max results 1-100, default 5"`
}

// searchArchiveResult is the JSON shape returned to the caller.
type searchArchiveResult struct {
	Entries []models.ArchiveEntry `json:"entries"`
	Count   int                   `json:"count"`
}

// NewSearchArchiveHandler creates the search_archive tool handler.
func NewSearchArchiveHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchArchiveInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchArchiveInput) (*mcp.CallToolResult, any, error) {
		if input.Limit > maxSearchLimit {
			return ErrorResult("Limit must be 1-100", "Reduce limit value"), nil, nil
		}

		entries, err := deps.Memory.SearchArchive(ctx, models.SearchQuery{
			Text:          input.Query,
			ParticipantID: input.ParticipantID,
			ChannelID:     input.ChannelID,
			Limit:         input.Limit,
		})
		if err != nil {
			deps.logger().Error("archive search failed", "error", err)
			return ErrorResult("Archive search failed", "The index may be unreachable"), nil, nil
		}

		deps.logger().Info("archive searched",
			"participant", input.ParticipantID, "channel", input.ChannelID, "results", len(entries))
		return JSONResult(searchArchiveResult{Entries: entries, Count: len(entries)}), nil, nil
	}
}
