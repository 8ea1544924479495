package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/ClientForge/internal/domain/booking"
	"github.com/Strob0t/ClientForge/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Bookings *service.BookingService
	Clients  *service.ClientService
	Timeline *service.TimelineService
}

// BookCall handles POST /api/clients/book-call
func (h *Handlers) BookCall(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[booking.Request](w, r)
	if !ok {
		return
	}
	resp, err := h.Bookings.BookCall(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateDescription handles PATCH /api/clients/{id}/description
func (h *Handlers) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[booking.UpdateDescriptionRequest](w, r)
	if !ok {
		return
	}
	if err := h.Bookings.UpdateDescription(r.Context(), chi.URLParam(r, "id"), req.Description); err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// UpcomingBookings handles GET /api/clients/{id}/upcoming-bookings
func (h *Handlers) UpcomingBookings(w http.ResponseWriter, r *http.Request) {
	ub, err := h.Bookings.UpcomingBookings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, ub)
}

// CreateCalendarEvent handles POST /api/clients/{id}/create-calendar-event
func (h *Handlers) CreateCalendarEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[booking.CreateCalendarEventRequest](w, r)
	if !ok {
		return
	}
	ev, err := h.Bookings.CreateCalendarEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}
