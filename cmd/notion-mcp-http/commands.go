package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"notion-mcp/internal/config"
	"notion-mcp/internal/mcpserver"
	"notion-mcp/internal/notion"
	"notion-mcp/internal/server"
	"notion-mcp/internal/telemetry"
	"notion-mcp/internal/tools"
)

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Value.String() != "" {
		cfg.Port = f.Value.String()
	}
	if f := cmd.Flags().Lookup("cors-origin"); f != nil && f.Value.String() != "" {
		cfg.CORSOrigin = f.Value.String()
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// newRegistry wires the shared Notion client and telemetry into the tool table.
func newRegistry(cfg config.Config, logger *slog.Logger) (*tools.Registry, error) {
	client := notion.New(notion.Options{
		BaseURL: cfg.NotionBaseURL,
		APIKey:  cfg.NotionAPIKey,
		Version: cfg.NotionVersion,
		HTTP:    &http.Client{Timeout: cfg.RequestTimeout},
		Logger:  logger,
	})
	observer, err := telemetry.NewGlobalToolObserver()
	if err != nil {
		return nil, fmt.Errorf("initializing tool observability: %w", err)
	}
	return tools.NewRegistry(client, tools.Options{
		Prefix:   cfg.Prefix(),
		Observer: observer,
	}), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	if cfg.NotionAPIKey == "" {
		logger.Warn("NOTION_API_KEY not set; every tool call will be rejected by Notion")
	}
	registry, err := newRegistry(cfg, logger)
	if err != nil {
		return err
	}
	srv := server.New(server.Config{
		Version:    version,
		CORSOrigin: cfg.CORSOrigin,
		Logger:     logger,
	}, registry)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Notion MCP Server running", "port", cfg.Port, "tls", cfg.TLSEnabled())
		if cfg.TLSEnabled() {
			errCh <- httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newStdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve the tools as an MCP server over stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// stdout carries the protocol.
			logger := newLogger(os.Stderr, cfg.LogLevel)
			slog.SetDefault(logger)
			if cfg.NotionAPIKey == "" {
				logger.Warn("NOTION_API_KEY not set; every tool call will be rejected by Notion")
			}
			registry, err := newRegistry(cfg, logger)
			if err != nil {
				return err
			}
			return mcpserver.ServeStdio(mcpserver.New(server.DefaultName, version, registry, logger))
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool descriptors as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry := tools.NewRegistry(nil, tools.Options{Prefix: cfg.Prefix()})
			return writeTools(cmd.OutOrStdout(), registry)
		},
	}
}

func writeTools(w io.Writer, registry *tools.Registry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(server.ListToolsResponse{Tools: registry.List()})
}
