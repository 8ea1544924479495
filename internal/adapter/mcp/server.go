// Package mcp exposes read-only ClientForge tools over the Model Context
// Protocol so AI agents can look up clients and parse timelines.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

// ClientReader looks up clients.
type ClientReader interface {
	List(ctx context.Context, f client.ListFilter) ([]client.Client, error)
	Get(ctx context.Context, id string) (*client.Client, error)
}

// TimelineReader parses timeline documents and lists stored events.
type TimelineReader interface {
	Parse(text string) timeline.ParseResult
	List(ctx context.Context, clientID string) ([]timeline.Event, error)
}

// ServerConfig holds the listener settings of the MCP server.
type ServerConfig struct {
	Addr    string
	Name    string
	Version string
}

// ServerDeps are the services backing the tools. Nil fields make the
// corresponding tools return an error result.
type ServerDeps struct {
	Clients  ClientReader
	Timeline TimelineReader
	// Verify checks bearer tokens. Nil disables authentication.
	Verify func(token string) error
}

// Server serves MCP over streamable HTTP.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
	httpSrv   *http.Server
	ln        net.Listener
}

// NewServer creates a Server with all tools and resources registered.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer { return s.mcpServer }

// Handler returns the authenticated HTTP handler for the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return AuthMiddleware(s.deps.Verify, mcpserver.NewStreamableHTTPServer(s.mcpServer))
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("mcp listen %s: %w", s.cfg.Addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.Handler())

	s.ln = ln
	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mcp server error", "error", err)
		}
	}()
	slog.Info("mcp server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.cfg.Addr
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
