// Package ws implements the WebSocket feed that pushes CRM activity to admin dashboards.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TokenVerifier validates the bearer token a dashboard passes as ?token=.
type TokenVerifier func(token string) error

// conn wraps a single WebSocket connection.
type conn struct {
	ws     *websocket.Conn
	cancel context.CancelFunc
}

// Hub manages all active WebSocket connections and broadcasts messages.
type Hub struct {
	originPatterns []string
	verify         TokenVerifier

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// NewHub creates a hub. allowedOrigin is the dashboard origin; empty skips
// the origin check. verify may be nil when admin auth is disabled.
func NewHub(allowedOrigin string, verify TokenVerifier) *Hub {
	h := &Hub{
		verify: verify,
		conns:  make(map[*conn]struct{}),
	}
	if allowedOrigin != "" {
		if u, err := url.Parse(allowedOrigin); err == nil && u.Host != "" {
			h.originPatterns = []string{u.Host}
		}
	}
	return h
}

// HandleWS upgrades the request to a WebSocket and registers the connection.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	if h.verify != nil {
		if err := h.verify(r.URL.Query().Get("token")); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     h.originPatterns,
		InsecureSkipVerify: len(h.originPatterns) == 0,
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	// The request context ends when the handler returns; the read loop outlives it.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &conn{ws: ws, cancel: cancel}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr)

	// Read loop to detect disconnects and consume pings.
	go func() {
		defer func() {
			h.remove(c)
			_ = ws.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		err := c.ws.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			slog.Debug("websocket write failed", "error", err)
			h.remove(c)
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected")
	}
}
