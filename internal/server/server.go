package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/creds"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/recorder"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/store"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server exposes the recorder, workflow store, and credential lookup as MCP
// tools. The dispatcher itself holds no session state; the one shared-state
// hazard lives inside the Recorder, which serializes its own transitions.
type Server struct {
	rec   *recorder.Recorder
	store *store.Store
	creds creds.Provider
	log   *zap.Logger
	mcp   *mcpserver.MCPServer
}

// tool pairs a declared tool with its handler, keeping the advertised
// catalog and the handled set in one closed table.
type tool struct {
	def     mcp.Tool
	handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates the server and registers the full tool catalog.
func New(rec *recorder.Recorder, st *store.Store, cp creds.Provider, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		rec:   rec,
		store: st,
		creds: cp,
		log:   log,
		mcp: mcpserver.NewMCPServer(
			"smart-rpa",
			version.Version,
		),
	}

	seen := make(map[string]bool)
	for _, t := range s.tools() {
		if t.def.Name == "" || t.handler == nil {
			return nil, fmt.Errorf("tool catalog entry %q is incomplete", t.def.Name)
		}
		if seen[t.def.Name] {
			return nil, fmt.Errorf("tool %q declared twice", t.def.Name)
		}
		seen[t.def.Name] = true
		s.mcp.AddTool(t.def, t.handler)
	}
	return s, nil
}

// ToolNames returns the declared tool names, for catalog consistency checks.
func (s *Server) ToolNames() []string {
	var names []string
	for _, t := range s.tools() {
		names = append(names, t.def.Name)
	}
	return names
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		s.log.Info("serving MCP over stdio")
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		s.log.Info("serving MCP over streamable HTTP", zap.Int("port", cfg.Port))
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

// tools declares the complete tool catalog. Tool names and required argument
// fields are wire-stable; renaming any of them is a protocol version bump.
func (s *Server) tools() []tool {
	return []tool{
		{
			def: mcp.NewTool("workflow_fetch",
				mcp.WithDescription("Fetch a recorded workflow by name. Returns the full document in a fenced json block for replay."),
				mcp.WithString("workflowName", mcp.Description("Name of the workflow to fetch"), mcp.Required()),
			),
			handler: s.handleWorkflowFetch,
		},
		{
			def: mcp.NewTool("workflow_list",
				mcp.WithDescription("List all recorded workflows with their descriptions and step counts"),
			),
			handler: s.handleWorkflowList,
		},
		{
			def: mcp.NewTool("workflow_record_start",
				mcp.WithDescription("Start recording a new workflow. Only one recording session may be active at a time."),
				mcp.WithString("name", mcp.Description("Unique workflow name; a later save overwrites any workflow with the same name"), mcp.Required()),
				mcp.WithString("description", mcp.Description("Human-readable description of what the workflow does")),
			),
			handler: s.handleRecordStart,
		},
		{
			def: mcp.NewTool("workflow_record_stop",
				mcp.WithDescription("Stop the active recording and persist the resulting workflow"),
			),
			handler: s.handleRecordStop,
		},
		{
			def: mcp.NewTool("workflow_record_action",
				mcp.WithDescription("Record one browser action into the active recording. Element references are generalized to stable selectors using the latest recorded snapshot. Ignored when no recording is active."),
				mcp.WithString("tool", mcp.Description("Action performed: navigate, click, type, or select_option"), mcp.Required()),
				mcp.WithString("element", mcp.Description("Human-readable label of the target element (used for step descriptions only)")),
				mcp.WithString("ref", mcp.Description("Ephemeral element reference from the latest browser snapshot (click, type, select_option)")),
				mcp.WithString("url", mcp.Description("Destination URL (navigate)")),
				mcp.WithString("text", mcp.Description("Text typed (type)")),
				mcp.WithBoolean("submit", mcp.Description("Whether Enter was pressed after typing (type)")),
				mcp.WithArray("values", mcp.Description("Selected option values (select_option)")),
			),
			handler: s.handleRecordAction,
		},
		{
			def: mcp.NewTool("workflow_record_snapshot",
				mcp.WithDescription("Feed the latest accessibility-tree snapshot to the recorder so element references can be resolved. When no recording is active the snapshot is retained for the next session."),
				mcp.WithString("snapshot", mcp.Description("Accessibility snapshot text as returned by the browser tool"), mcp.Required()),
			),
			handler: s.handleRecordSnapshot,
		},
		{
			def: mcp.NewTool("get_login_credentials",
				mcp.WithDescription("Look up stored login credentials for a site"),
				mcp.WithString("site", mcp.Description("Site key the credentials are stored under"), mcp.Required()),
			),
			handler: s.handleGetCredentials,
		},
		{
			def: mcp.NewTool("login_to_site",
				mcp.WithDescription("Format stored credentials for a site as replay-ready login instructions"),
				mcp.WithString("site", mcp.Description("Site key the credentials are stored under"), mcp.Required()),
			),
			handler: s.handleLogin,
		},
	}
}
