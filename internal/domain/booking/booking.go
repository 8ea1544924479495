// Package booking contains the domain model of the "book a call" intake flow.
package booking

import "time"

// RoleType is the role the prospect holds in their organisation.
type RoleType string

const (
	RoleFounder                RoleType = "founder"
	RoleEmployee               RoleType = "employee"
	RoleBusinessRepresentative RoleType = "business_representative"
	RoleOther                  RoleType = "other"
)

// Request is the booking form as submitted to POST /api/clients/book-call.
// Budget and Urgency are kept as entered text so that the same value can be
// validated by the wizard before it is ever converted.
type Request struct {
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	RoleType           RoleType `json:"role_type"`
	CompanyName        string   `json:"company_name,omitempty"`
	ProjectDescription string   `json:"project_description"`
	Timeline           string   `json:"timeline,omitempty"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date,omitempty"`
	Budget             string   `json:"budget"`
	Urgency            int      `json:"urgency"`
	UseAISummarization bool     `json:"use_ai_summarization"`
}

// Response is returned by the intake endpoint. The description fields are
// only set when AI summarization was requested.
type Response struct {
	ClientID                string `json:"client_id"`
	Message                 string `json:"message,omitempty"`
	AISummarizedDescription string `json:"ai_summarized_description,omitempty"`
	OriginalDescription     string `json:"original_description,omitempty"`
}

// UpdateDescriptionRequest replaces a client's project description.
type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

// CalendarEvent is a scheduled call on the consultancy calendar.
type CalendarEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status,omitempty"`
	MeetURL   string    `json:"meet_url,omitempty"`
}

// UpcomingBookings reports the calls a client already has scheduled.
type UpcomingBookings struct {
	HasUpcomingBookings bool            `json:"has_upcoming_bookings"`
	UpcomingEvents      []CalendarEvent `json:"upcoming_events"`
}

// CreateCalendarEventRequest asks for a call to be placed on the calendar.
type CreateCalendarEventRequest struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Description string    `json:"description,omitempty"`
}
