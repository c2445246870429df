package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/lead-agent/internal/notifications"
	"github.com/ziadkadry99/lead-agent/internal/records"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes attendance and scoring tools to
// sales assistants.
type Server struct {
	records       *records.Store
	notifications *notifications.Store
	mcp           *server.MCPServer
}

// NewServer creates a new MCP server. Either store may be nil, in which case
// the tools backed by it report an error instead of results.
func NewServer(recordStore *records.Store, notificationStore *notifications.Store) *Server {
	s := &Server{
		records:       recordStore,
		notifications: notificationStore,
	}

	s.mcp = server.NewMCPServer(
		"leadagent",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listAttendancesTool, s.handleListAttendances)
	s.mcp.AddTool(getAttendanceTool, s.handleGetAttendance)
	s.mcp.AddTool(scoreConversationTool, s.handleScoreConversation)
	s.mcp.AddTool(pendingNotificationsTool, s.handlePendingNotifications)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
