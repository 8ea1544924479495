package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/ClientForge/internal/port/broadcast"
)

var _ broadcast.Broadcaster = (*Hub)(nil)

// ClientBookedEvent is broadcast when a prospect completes the intake form.
type ClientBookedEvent struct {
	ClientID    string `json:"client_id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	Urgency     int    `json:"urgency"`
}

// ClientChangedEvent is broadcast when a client record is updated or deleted.
type ClientChangedEvent struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status,omitempty"`
}

// CalendarBookedEvent is broadcast when a call is placed on the calendar.
type CalendarBookedEvent struct {
	ClientID  string `json:"client_id"`
	EventID   string `json:"event_id"`
	StartTime string `json:"start_time"`
}

// TimelineEvent is broadcast when a client's timeline changes.
type TimelineEvent struct {
	ClientID string `json:"client_id,omitempty"`
	EventID  string `json:"event_id,omitempty"`
	Count    int    `json:"count"`
}

// BroadcastEvent marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
