package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all Kahin admin
// tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("kahinadmin", "1.0.0")
	client := NewKahinClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolListMarkets, h.HandleListMarkets)
	s.AddTool(ToolTreasuryOverview, h.HandleTreasuryOverview)
	s.AddTool(ToolDisputeStats, h.HandleDisputeStats)
	s.AddTool(ToolFindUser, h.HandleFindUser)
	s.AddTool(ToolRecentTransactions, h.HandleRecentTransactions)

	return s
}
