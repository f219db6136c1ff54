package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *KahinClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *KahinClient) *Handlers {
	return &Handlers{client: client}
}

// HandleListMarkets lists prediction markets.
func (h *Handlers) HandleListMarkets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	search := req.GetString("search", "")

	raw, err := h.client.ListMarkets(ctx, status, search)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list markets: %v", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// HandleTreasuryOverview returns the treasury snapshot.
func (h *Handlers) HandleTreasuryOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.TreasuryOverview(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get treasury overview: %v", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// HandleDisputeStats returns aggregate dispute counts.
func (h *Handlers) HandleDisputeStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.DisputeStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get dispute stats: %v", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// HandleFindUser searches platform accounts.
func (h *Handlers) HandleFindUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	raw, err := h.client.FindUser(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find user: %v", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// HandleRecentTransactions lists recent ledger entries.
func (h *Handlers) HandleRecentTransactions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	txType := req.GetString("type", "")
	userID := req.GetString("user_id", "")

	raw, err := h.client.RecentTransactions(ctx, txType, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list transactions: %v", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// formatJSON pretty-prints a raw payload for the LLM.
func formatJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
