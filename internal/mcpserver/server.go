// Package mcpserver exposes the tool registry as an MCP server over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"notion-mcp/internal/tools"
)

// New registers every tool in registry on a new MCP server. Tool failures
// are reported as error results, not protocol errors.
func New(name, version string, registry *tools.Registry, logger *slog.Logger) *server.MCPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	for _, tool := range registry.List() {
		s.AddTool(tool, handler(registry, tool.Name, logger))
	}
	return s
}

func handler(registry *tools.Registry, name string, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := registry.CallJSON(ctx, name, raw)
		if err != nil {
			logger.Warn("tool call failed", "tool", name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return res, nil
	}
}

// ServeStdio blocks serving MCP on stdin/stdout until stdin closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
