package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lamina-ai/recall-go/internal/metrics"
	"github.com/lamina-ai/recall-go/internal/models"
)

// MemoryStatsInput defines the input schema for the memory_stats tool.
// No parameters.
type MemoryStatsInput struct{}

// memoryStatsResult combines tier stats with operation timings.
type memoryStatsResult struct {
	models.MemoryStats
	Operations *metrics.Snapshot `json:"operations,omitempty"`
}

// NewMemoryStatsHandler creates the memory_stats tool handler.
func NewMemoryStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[MemoryStatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MemoryStatsInput) (*mcp.CallToolResult, any, error) {
		result := memoryStatsResult{MemoryStats: deps.Memory.Stats()}
		if deps.Metrics != nil {
			snap := deps.Metrics.Snapshot()
			result.Operations = &snap
		}
		return JSONResult(result), nil, nil
	}
}
