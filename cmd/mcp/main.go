// Kahin MCP Server - Exposes read-only platform insight tools for LLMs
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kahinlabs/kahinadmin/internal/mcpserver"
)

func main() {
	cfg := mcpserver.Config{
		APIURL:     envOrDefault("KAHIN_API_URL", "http://localhost:3000"),
		AdminToken: os.Getenv("KAHIN_ADMIN_TOKEN"),
	}

	if cfg.AdminToken == "" {
		fmt.Fprintln(os.Stderr, "KAHIN_ADMIN_TOKEN is required")
		os.Exit(1)
	}

	s := mcpserver.NewMCPServer(cfg)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
