// Package mcp exposes the workflow converter to agents over the Model
// Context Protocol, mirroring the HTTP boundary's semantics on a stdio
// transport.
package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/flowconv/internal/validation"
)

// ConverterServerDeps holds the dependencies for creating a ConverterServer.
type ConverterServerDeps struct {
	Validator *validation.WorkflowValidator
	Logger    *slog.Logger
	Version   string
}

// ConverterServer wraps an MCP server with converter tool handlers.
type ConverterServer struct {
	validator *validation.WorkflowValidator
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// NewConverterServer creates a ConverterServer with both tools registered.
func NewConverterServer(deps ConverterServerDeps) *ConverterServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &ConverterServer{
		validator: deps.Validator,
		logger:    logger,
		version:   deps.Version,
	}

	mcpSrv := server.NewMCPServer(
		"flowconv",
		deps.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("flowconv converts visual node-graph workflows into the flat API format executed by the graph engine. Use flowconv.convert to convert a workflow document and flowconv.inspect to check its format and size without converting."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes.
func (s *ConverterServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *ConverterServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *ConverterServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: convertTool(), Handler: s.handleConvert},
		{Tool: inspectTool(), Handler: s.handleInspect},
	}
}

func convertTool() mcp.Tool {
	return mcp.NewTool("flowconv.convert",
		mcp.WithDescription("Convert an editor-format workflow document to the flat API format. Documents already in API format are returned unchanged."),
		mcp.WithObject("workflow", mcp.Required(), mcp.Description("The workflow document (editor or API format)")),
	)
}

func inspectTool() mcp.Tool {
	return mcp.NewTool("flowconv.inspect",
		mcp.WithDescription("Detect a workflow document's format and report node/link counts without converting it"),
		mcp.WithObject("workflow", mcp.Required(), mcp.Description("The workflow document to inspect")),
	)
}
