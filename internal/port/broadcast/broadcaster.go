// Package broadcast defines the port for pushing real-time events to admin clients.
package broadcast

import "context"

// Event types sent to the admin feed.
const (
	EventClientBooked     = "client.booked"
	EventClientUpdated    = "client.updated"
	EventClientDeleted    = "client.deleted"
	EventSummaryUpdated   = "client.summary_updated"
	EventCalendarBooked   = "calendar.booked"
	EventTimelineImported = "timeline.imported"
	EventTimelineChanged  = "timeline.changed"
)

// Broadcaster sends real-time events to all connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected clients.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
