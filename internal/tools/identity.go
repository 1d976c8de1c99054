package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReloadIdentityInput defines the input schema for the reload_identity
// tool. No parameters.
type ReloadIdentityInput struct{}

// NewReloadIdentityHandler creates the reload_identity tool handler:
// re-reads the identity file from disk without a restart. On failure
// the previous identity stays in effect.
func NewReloadIdentityHandler(deps *Dependencies) mcp.ToolHandlerFor[ReloadIdentityInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ReloadIdentityInput) (*mcp.CallToolResult, any, error) {
		record, err := deps.Memory.ReloadIdentity()
		if err != nil {
			deps.logger().Error("identity reload failed", "error", err)
			return ErrorResult("Identity reload failed, previous identity kept", err.Error()), nil, nil
		}

		deps.logger().Info("identity reloaded", "name", record.Name)
		return JSONResult(record), nil, nil
	}
}
