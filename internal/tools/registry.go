package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// Called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Liveness check - responds with pong or echoes input",
	}, NewPingHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_turn",
		Description: "Record one conversation turn into the channel's short-term buffer",
	}, NewRecordTurnHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_context",
		Description: "Assemble reply context: recent turns, similar archived exchanges, identity",
	}, NewBuildContextHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_archive",
		Description: "Search archived exchanges by similarity with optional participant/channel filters",
	}, NewSearchArchiveHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_facts",
		Description: "List stored facts, optionally filtered by subject and type",
	}, NewQueryFactsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_stats",
		Description: "Report buffer, archive and identity statistics plus operation timings",
	}, NewMemoryStatsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "consolidate",
		Description: "Force a consolidation run for one channel, or all channels when none given",
	}, NewConsolidateHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_buffer",
		Description: "Drop a channel's unconsolidated short-term turns",
	}, NewClearBufferHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wipe_memory",
		Description: "Erase all memory tiers; requires confirm=true",
	}, NewWipeMemoryHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reload_identity",
		Description: "Re-read the identity file from disk without restarting",
	}, NewReloadIdentityHandler(deps))
}
