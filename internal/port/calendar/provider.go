// Package calendar defines the port for the external scheduling provider.
package calendar

import (
	"context"
	"time"

	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

// Provider lists and creates meetings on the consultancy's calendar.
type Provider interface {
	// UpcomingEvents returns events booked by the attendee email that start after now.
	UpcomingEvents(ctx context.Context, email string, now time.Time) ([]booking.CalendarEvent, error)

	// CreateEvent books a meeting.
	CreateEvent(ctx context.Context, req booking.CreateCalendarEventRequest) (*booking.CalendarEvent, error)
}
