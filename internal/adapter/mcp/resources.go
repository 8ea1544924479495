package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/Strob0t/ClientForge/internal/domain/client"
)

const leadsURI = "clientforge://clients/leads"

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			leadsURI,
			"Open Leads",
			mcplib.WithResourceDescription("Clients that booked a call and are still in the lead stage"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleLeadsResource,
	)
}

func (s *Server) handleLeadsResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	text := `{"error":"client reader not configured"}`
	if s.deps.Clients != nil {
		leads, err := s.deps.Clients.List(ctx, client.ListFilter{Status: client.StatusLead})
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(leads)
		if err != nil {
			return nil, err
		}
		text = string(data)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}
