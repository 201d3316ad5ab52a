// ABOUTME: MCP server implementation for gachi
// ABOUTME: Exposes schedules, family check-ins and activity ideas to AI agents

package mcp

import (
	"github.com/harper/gachi/internal/family"
	"github.com/harper/gachi/internal/recommend"
	"github.com/harper/gachi/internal/schedule"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/mark3labs/mcp-go/server"
)

// Deps are the services the MCP handlers act through. UserID is the local
// user every call is made on behalf of.
type Deps struct {
	Store       storage.Store
	Schedules   *schedule.Service
	Family      *family.Service
	Recommender *recommend.Recommender
	Clock       timeutil.Clock
	UserID      string
	District    string
}

// Server wraps the MCP server with gachi-specific context
type Server struct {
	mcpServer *server.MCPServer
	Deps
}

// NewServer creates a new MCP server instance
func NewServer(deps Deps) *Server {
	s := &Server{Deps: deps}

	s.mcpServer = server.NewMCPServer(
		"gachi",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
