package timeline

import (
	"strings"
	"time"
)

// displayDateLayout formats dates in event descriptions.
const displayDateLayout = "2006-01-02"

// ToTimelineEvents converts parsed milestones into timeline event requests
// for clientID. Milestones without any date are dated now.
func ToTimelineEvents(clientID string, milestones []Milestone, now time.Time) []CreateEventRequest {
	out := make([]CreateEventRequest, 0, len(milestones))
	for i := range milestones {
		out = append(out, ToTimelineEvent(clientID, &milestones[i], now))
	}
	return out
}

// ToTimelineEvent converts a single milestone.
func ToTimelineEvent(clientID string, m *Milestone, now time.Time) CreateEventRequest {
	eventDate := now
	switch {
	case m.StartDate != nil:
		eventDate = *m.StartDate
	case m.EndDate != nil:
		eventDate = *m.EndDate
	}

	return CreateEventRequest{
		ClientID:    clientID,
		EventType:   EventMilestoneReached,
		Title:       m.Title,
		Description: eventDescription(m),
		EventDate:   eventDate,
		NextSteps:   nextSteps(m),
	}
}

// eventDescription appends the milestone metadata to its description.
// The line order is fixed because the text is shown verbatim to clients.
func eventDescription(m *Milestone) string {
	var meta []string
	add := func(label, val string) {
		if val != "" {
			meta = append(meta, label+": "+val)
		}
	}

	if m.StartDate != nil {
		add("Start", m.StartDate.Format(displayDateLayout))
	}
	if m.EndDate != nil {
		add("End", m.EndDate.Format(displayDateLayout))
	}
	add("Effort", m.Effort)
	add("Acceptance Criteria", m.AcceptanceCriteria)
	add("Payment", m.Payment)
	add("Key Deliverables", m.KeyDeliverables())
	add("Sprint", m.Sprint())

	base := strings.TrimSpace(m.Description)
	switch {
	case len(meta) == 0:
		return base
	case base == "":
		return strings.Join(meta, "\n")
	default:
		return base + "\n\n" + strings.Join(meta, "\n")
	}
}

func nextSteps(m *Milestone) string {
	var lines []string
	if m.MilestoneNumber != "" {
		lines = append(lines, "Milestone #"+strings.TrimPrefix(m.MilestoneNumber, "#"))
	}
	if m.AcceptanceCriteria != "" {
		lines = append(lines, m.AcceptanceCriteria)
	}
	return strings.Join(lines, "\n")
}
