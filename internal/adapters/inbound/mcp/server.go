package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewTagAuditMCPServer creates a new MCP server with all TagAudit tools and
// resources registered. The workDir is where .tagaudit.yaml and audit
// history live.
func NewTagAuditMCPServer(workDir string) *server.MCPServer {
	s := server.NewMCPServer(
		"tagaudit",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, workDir)
	registerResources(s)

	return s
}
