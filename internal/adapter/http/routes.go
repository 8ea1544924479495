package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/ClientForge/internal/middleware"
)

// RouteConfig carries the middleware that differs between the public intake
// endpoints and the admin API.
type RouteConfig struct {
	// RateLimit guards the public endpoints. Nil disables rate limiting.
	RateLimit func(http.Handler) http.Handler
	// Idempotency replays repeated mutating requests. Nil disables it.
	Idempotency func(http.Handler) http.Handler
	// Auth authenticates admin requests.
	Auth func(http.Handler) http.Handler
	// WebhookSecret verifies calendar provider webhooks.
	WebhookSecret string
}

func passThrough(next http.Handler) http.Handler { return next }

func orPassThrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passThrough
	}
	return mw
}

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, cfg RouteConfig) {
	// Provider webhooks (outside auth, HMAC verified)
	r.With(middleware.WebhookHMAC(cfg.WebhookSecret, "X-Cal-Signature-256")).
		Post("/api/webhooks/calendar", h.CalendarWebhook)

	// Public intake, used by the booking wizard
	r.Group(func(r chi.Router) {
		r.Use(orPassThrough(cfg.RateLimit))
		r.Use(orPassThrough(cfg.Idempotency))

		r.Post("/api/clients/book-call", h.BookCall)
		r.Patch("/api/clients/{id}/description", h.UpdateDescription)
		r.Get("/api/clients/{id}/upcoming-bookings", h.UpcomingBookings)
		r.Post("/api/clients/{id}/create-calendar-event", h.CreateCalendarEvent)
	})

	// Back office
	r.Group(func(r chi.Router) {
		r.Use(orPassThrough(cfg.Auth))
		r.Use(orPassThrough(cfg.Idempotency))
		admin := middleware.RequireRole(middleware.RoleAdmin)

		// Clients
		r.Get("/api/clients", h.ListClients)
		r.Post("/api/clients", h.CreateClient)
		r.Get("/api/clients/{id}", handleGet(h.Clients.Get, "client not found"))
		r.Put("/api/clients/{id}", handleUpdate(h.Clients.Update, "client not found"))
		r.With(admin).Delete("/api/clients/{id}", handleDelete(h.Clients.Delete, "client not found"))
		r.Get("/api/clients/{id}/overview", handleGet(h.Clients.Overview, "client not found"))

		// Notes
		r.Get("/api/clients/{id}/notes", handleListFor(h.Clients.ListNotes, "client not found"))
		r.Post("/api/clients/{id}/notes", h.CreateNote)
		r.Delete("/api/notes/{id}", handleDelete(h.Clients.DeleteNote, "note not found"))

		// Contracts
		r.Get("/api/clients/{id}/contracts", handleListFor(h.Clients.ListContracts, "client not found"))
		r.Post("/api/clients/{id}/contracts", handleCreateFor(h.createContract, "client not found"))
		r.Put("/api/contracts/{id}", handleUpdate(h.Clients.UpdateContract, "contract not found"))
		r.With(admin).Delete("/api/contracts/{id}", handleDelete(h.Clients.DeleteContract, "contract not found"))

		// Tech stack
		r.Get("/api/clients/{id}/tech-stack", handleListFor(h.Clients.ListTechStack, "client not found"))
		r.Post("/api/clients/{id}/tech-stack", handleCreateFor(h.addTechStackItem, "client not found"))
		r.Delete("/api/tech-stack/{id}", handleDelete(h.Clients.DeleteTechStackItem, "tech stack item not found"))

		// Admin accounts
		r.Get("/api/clients/{id}/accounts", handleListFor(h.Clients.ListAccounts, "client not found"))
		r.Post("/api/clients/{id}/accounts", handleCreateFor(h.createAccount, "client not found"))
		r.With(admin).Get("/api/accounts/{id}/reveal", h.RevealAccount)
		r.With(admin).Delete("/api/accounts/{id}", handleDelete(h.Clients.DeleteAccount, "account not found"))

		// Timeline
		r.Get("/api/clients/{id}/timeline", handleListFor(h.Timeline.List, "client not found"))
		r.Post("/api/clients/{id}/timeline", h.CreateTimelineEvent)
		r.Delete("/api/timeline/{id}", handleDelete(h.Timeline.Delete, "timeline event not found"))
		r.Post("/api/timeline/parse", h.ParseTimeline)
		r.Post("/api/clients/{id}/timeline/parse-ai", h.ParseTimelineAI)
		r.Post("/api/clients/{id}/timeline/import", h.ImportTimeline)
	})
}
