// Package timeline contains the domain model for client project timelines:
// the milestones recognised in free-form timeline documents and the timeline
// events they are turned into.
package timeline

import (
	"time"
)

// EventType classifies a timeline event.
type EventType string

const (
	EventMilestoneReached EventType = "Milestone Reached"
	EventMeeting          EventType = "Meeting"
	EventContractSigned   EventType = "Contract Signed"
	EventPaymentReceived  EventType = "Payment Received"
	EventDeliverable      EventType = "Deliverable Shipped"
	EventNote             EventType = "Note"
)

// ProjectInfo is the project-level metadata found in the header of a
// timeline document.
type ProjectInfo struct {
	Duration   string     `json:"duration,omitempty"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Engagement string     `json:"engagement,omitempty"`
	Deposit    string     `json:"deposit,omitempty"`
	HasSprints bool       `json:"hasSprints"`
}

// Milestone is one row of a timeline table. Columns without a dedicated
// field are kept in Extra under their normalized header key.
type Milestone struct {
	MilestoneNumber    string            `json:"milestoneNumber,omitempty"`
	Title              string            `json:"title"`
	Description        string            `json:"description,omitempty"`
	StartDate          *time.Time        `json:"startDate,omitempty"`
	EndDate            *time.Time        `json:"endDate,omitempty"`
	Effort             string            `json:"effort,omitempty"`
	AcceptanceCriteria string            `json:"acceptanceCriteria,omitempty"`
	Payment            string            `json:"payment,omitempty"`
	Extra              map[string]string `json:"extra,omitempty"`
}

// Emittable reports whether the milestone has a title and at least one date.
func (m *Milestone) Emittable() bool {
	return m.Title != "" && (m.StartDate != nil || m.EndDate != nil)
}

// KeyDeliverables returns the value of the deliverables column, if any.
func (m *Milestone) KeyDeliverables() string {
	if v := m.Extra["key_deliverables"]; v != "" {
		return v
	}
	return m.Extra["deliverables"]
}

// Sprint returns the value of the sprint column, if any.
func (m *Milestone) Sprint() string {
	return m.Extra["sprint"]
}

// ParseResult is the output of a timeline parse. Errors is advisory: a
// non-empty list does not invalidate ProjectInfo or Milestones.
type ParseResult struct {
	ProjectInfo ProjectInfo `json:"projectInfo"`
	Milestones  []Milestone `json:"milestones"`
	Errors      []string    `json:"errors"`
}

// Event is a persisted entry on a client's timeline.
type Event struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	EventType   EventType `json:"event_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	NextSteps   string    `json:"next_steps"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateEventRequest is the input for creating a timeline event.
type CreateEventRequest struct {
	ClientID    string    `json:"client_id"`
	EventType   EventType `json:"event_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	NextSteps   string    `json:"next_steps"`
}

// ParseRequest carries raw timeline text to a parser.
type ParseRequest struct {
	ClientID string `json:"client_id,omitempty"`
	Text     string `json:"text"`
}

// ImportRequest asks for a timeline document to be parsed and stored.
type ImportRequest struct {
	Text   string `json:"text"`
	UseAI  bool   `json:"use_ai"`
	DryRun bool   `json:"dry_run"`
}

// ImportResult summarizes a timeline import.
type ImportResult struct {
	ProjectInfo ProjectInfo `json:"projectInfo"`
	Events      []Event     `json:"events"`
	Skipped     int         `json:"skipped"`
	Warnings    []string    `json:"warnings,omitempty"`
}
