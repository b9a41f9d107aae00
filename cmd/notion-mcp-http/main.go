// Command notion-mcp-http serves Notion workspace operations as MCP tools.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "notion-mcp-http",
		Short:        "Notion tools over an MCP-style HTTP API",
		Version:      version,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	addServeFlags(root)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE:  runServe,
	}
	addServeFlags(serve)

	root.AddCommand(serve, newStdioCmd(), newToolsCmd())
	return root
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", "", "Listen port (overrides PORT, default 3000)")
	cmd.Flags().String("cors-origin", "", "Allowed CORS origin (default *)")
}
