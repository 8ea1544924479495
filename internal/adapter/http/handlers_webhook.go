package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

// calendarWebhook is the scheduling provider's booking notification.
type calendarWebhook struct {
	TriggerEvent string `json:"triggerEvent"`
	Payload      struct {
		UID       string    `json:"uid"`
		Title     string    `json:"title"`
		StartTime time.Time `json:"startTime"`
		EndTime   time.Time `json:"endTime"`
		Status    string    `json:"status"`
		Attendees []struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"attendees"`
		Metadata struct {
			VideoCallURL string `json:"videoCallUrl"`
		} `json:"metadata"`
	} `json:"payload"`
}

// CalendarWebhook handles POST /api/webhooks/calendar. Bookings made on the
// provider's page are matched to clients by attendee email. Other trigger
// events are acknowledged and ignored.
func (h *Handlers) CalendarWebhook(w http.ResponseWriter, r *http.Request) {
	hook, ok := readJSON[calendarWebhook](w, r)
	if !ok {
		return
	}
	switch hook.TriggerEvent {
	case "BOOKING_CREATED", "BOOKING_RESCHEDULED":
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ignored": hook.TriggerEvent})
		return
	}

	p := hook.Payload
	ev := &booking.CalendarEvent{
		ID:        p.UID,
		Title:     p.Title,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Status:    strings.ToLower(p.Status),
		MeetURL:   p.Metadata.VideoCallURL,
	}

	matched := 0
	for _, a := range p.Attendees {
		if a.Email == "" {
			continue
		}
		n, err := h.Bookings.CalendarBooked(r.Context(), a.Email, ev)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		matched += n
	}
	if matched == 0 {
		slog.InfoContext(r.Context(), "calendar booking for unknown attendee", "event_id", ev.ID)
	}
	writeJSON(w, http.StatusOK, map[string]int{"matched": matched})
}
