package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is a dependency whose liveness is reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health returns a handler that pings every dependency. Any failure turns
// the overall status to "degraded" with a 503.
func Health(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := healthStatus{Status: "ok", Checks: make(map[string]string, len(deps))}
		code := http.StatusOK
		for name, p := range deps {
			if err := p.Ping(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				status.Checks[name] = "unavailable"
				status.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[name] = "ok"
		}
		writeJSON(w, code, status)
	}
}
