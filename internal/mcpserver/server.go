package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all advisory tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("nucleus", "1.0.0")
	client := NewNucleusClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolClassifyIntent, h.HandleClassifyIntent)
	s.AddTool(ToolComputeTrust, h.HandleComputeTrust)
	s.AddTool(ToolAssessRisk, h.HandleAssessRisk)
	s.AddTool(ToolMatchUsers, h.HandleMatchUsers)
	s.AddTool(ToolGetRecommendation, h.HandleGetRecommendation)
	s.AddTool(ToolGetAuditLogs, h.HandleGetAuditLogs)

	return s
}
