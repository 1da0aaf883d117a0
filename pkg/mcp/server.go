package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/stylebind/pkg/bridge"
	"github.com/gnana997/stylebind/pkg/convert"
	"github.com/gnana997/stylebind/pkg/document"
	"github.com/gnana997/stylebind/pkg/mcplog"
	"github.com/gnana997/stylebind/pkg/naming"
	"github.com/gnana997/stylebind/pkg/variables"
)

const serverVersion = "0.1.0-dev"

// Deps are the services the MCP tools drive.
type Deps struct {
	Session    *document.Session
	Bridge     *bridge.Bridge
	Converter  *convert.Converter
	Variables  *variables.Cache
	Convention naming.Convention
}

// Server exposes the UI bridge and supporting lookups as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	deps      Deps
	logger    *mcplog.Logger // nil disables tool-call logging
}

// NewServer creates a new MCP server. logger may be nil.
func NewServer(deps Deps, logger *mcplog.Logger) *Server {
	s := &Server{deps: deps, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("stylebind", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: checkSelectionTool(), Handler: s.handleCheckSelection},
		server.ServerTool{Tool: convertTool(), Handler: s.handleConvert},
		server.ServerTool{Tool: previewConversionTool(), Handler: s.handlePreviewConversion},
		server.ServerTool{Tool: selectTool(), Handler: s.handleSelect},
		server.ServerTool{Tool: mapStyleNameTool(), Handler: s.handleMapStyleName},
		server.ServerTool{Tool: listVariablesTool(), Handler: s.handleListVariables},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
