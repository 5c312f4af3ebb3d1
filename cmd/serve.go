package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/creds"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/recorder"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/server"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server exposing workflow recording tools",
	Long: `Start a Model Context Protocol (MCP) server exposing the workflow
recorder, workflow store, and credential helpers as tools.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  smart-rpa serve
  smart-rpa serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	rec := recorder.New(log)
	st := store.New(cfg.Store.Dir, cfg.Store.CacheTTL, log)
	provider := creds.NewFileProvider(cfg.Creds.File)

	srv, err := server.New(rec, st, provider, log)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return srv.Serve(server.Config{Transport: transport, Port: port})
}
