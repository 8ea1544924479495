package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/ClientForge/internal/domain/client"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.listClientsTool(),
		s.getClientTool(),
		s.parseTimelineTool(),
		s.clientTimelineTool(),
	)
}

func (s *Server) listClientsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_clients",
		mcplib.WithDescription("List clients, optionally filtered by status or a search term"),
		mcplib.WithString("status",
			mcplib.Description("Lifecycle status"),
			mcplib.Enum("lead", "active", "paused", "completed", "archived"),
		),
		mcplib.WithString("search",
			mcplib.Description("Matches name, email or company"),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of clients to return"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListClients}
}

func (s *Server) getClientTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_client",
		mcplib.WithDescription("Get a client by ID"),
		mcplib.WithString("client_id",
			mcplib.Required(),
			mcplib.Description("The client ID to look up"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetClient}
}

func (s *Server) parseTimelineTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("parse_timeline",
		mcplib.WithDescription("Parse a project timeline document into project info and milestones without storing anything"),
		mcplib.WithString("text",
			mcplib.Required(),
			mcplib.Description("Timeline document text, usually a markdown table"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleParseTimeline}
}

func (s *Server) clientTimelineTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("client_timeline",
		mcplib.WithDescription("List the stored timeline events of a client"),
		mcplib.WithString("client_id",
			mcplib.Required(),
			mcplib.Description("The client ID"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleClientTimeline}
}

func (s *Server) handleListClients(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Clients == nil {
		return mcplib.NewToolResultError("client reader not configured"), nil
	}
	args := req.GetArguments()
	f := client.ListFilter{}
	if v, ok := args["status"].(string); ok {
		f.Status = client.Status(v)
	}
	if v, ok := args["search"].(string); ok {
		f.Search = v
	}
	if v, ok := args["limit"].(float64); ok {
		f.Limit = int(v)
	}
	clients, err := s.deps.Clients.List(ctx, f)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list clients", err), nil
	}
	return marshalResult(clients, "clients")
}

func (s *Server) handleGetClient(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Clients == nil {
		return mcplib.NewToolResultError("client reader not configured"), nil
	}
	id, ok := req.GetArguments()["client_id"].(string)
	if !ok || id == "" {
		return mcplib.NewToolResultError("client_id is required"), nil
	}
	c, err := s.deps.Clients.Get(ctx, id)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to get client %s", id), err), nil
	}
	return marshalResult(c, "client")
}

func (s *Server) handleParseTimeline(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Timeline == nil {
		return mcplib.NewToolResultError("timeline reader not configured"), nil
	}
	text, ok := req.GetArguments()["text"].(string)
	if !ok || text == "" {
		return mcplib.NewToolResultError("text is required"), nil
	}
	return marshalResult(s.deps.Timeline.Parse(text), "timeline")
}

func (s *Server) handleClientTimeline(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Timeline == nil {
		return mcplib.NewToolResultError("timeline reader not configured"), nil
	}
	id, ok := req.GetArguments()["client_id"].(string)
	if !ok || id == "" {
		return mcplib.NewToolResultError("client_id is required"), nil
	}
	events, err := s.deps.Timeline.List(ctx, id)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to list timeline of %s", id), err), nil
	}
	return marshalResult(events, "timeline events")
}

func marshalResult(v any, what string) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal "+what, err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
