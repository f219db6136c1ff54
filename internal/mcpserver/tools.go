package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the Kahin admin MCP server.
// Descriptions are what the LLM reads to decide which tool to use.
// Every tool is read-only; mutations stay behind the human console.

var ToolListMarkets = mcp.NewTool("list_markets",
	mcp.WithDescription(
		"List prediction markets on the Kahin platform. "+
			"Returns titles, statuses, trading volumes, and closing dates. "+
			"Filter by status to find markets awaiting closure or resolution."),
	mcp.WithString("status",
		mcp.Description("Filter by market status"),
		mcp.Enum("open", "closed", "resolved", "paused")),
	mcp.WithString("search",
		mcp.Description("Free-text search over market titles")),
)

var ToolTreasuryOverview = mcp.NewTool("treasury_overview",
	mcp.WithDescription(
		"Get the platform treasury snapshot: platform balance, total user "+
			"balances, locked funds, 30-day profit, and the liquidity status flag."),
)

var ToolDisputeStats = mcp.NewTool("dispute_stats",
	mcp.WithDescription(
		"Get aggregate dispute counts by review status and priority. "+
			"Use this to see how much review work is pending."),
)

var ToolFindUser = mcp.NewTool("find_user",
	mcp.WithDescription(
		"Search platform accounts by username or email. "+
			"Returns matching users with balances and roles."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Username or email fragment to search for")),
)

var ToolRecentTransactions = mcp.NewTool("recent_transactions",
	mcp.WithDescription(
		"List recent platform ledger entries: bets, payouts, deposits, "+
			"withdrawals, and manual adjustments."),
	mcp.WithString("type",
		mcp.Description("Filter by transaction type (e.g. 'bet', 'payout', 'deposit')")),
	mcp.WithString("user_id",
		mcp.Description("Only transactions for this user ID")),
)
