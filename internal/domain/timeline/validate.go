package timeline

import (
	"fmt"
	"strings"

	"github.com/Strob0t/ClientForge/internal/domain"
)

// ValidateCreateEvent validates a CreateEventRequest.
func ValidateCreateEvent(req *CreateEventRequest) error {
	if req.ClientID == "" {
		return domain.Invalid("client_id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return domain.Invalid("title is required")
	}
	if req.EventDate.IsZero() {
		return domain.Invalid("event_date is required")
	}
	return ValidateEventType(req.EventType)
}

// ValidateEventType checks if an event type value is known.
func ValidateEventType(t EventType) error {
	switch t {
	case EventMilestoneReached, EventMeeting, EventContractSigned, EventPaymentReceived, EventDeliverable, EventNote:
		return nil
	default:
		return fmt.Errorf("invalid event type %q: %w", t, domain.ErrValidation)
	}
}
