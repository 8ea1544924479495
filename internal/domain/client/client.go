// Package client contains the CRM domain: clients, their contracts, notes,
// tech stacks and the third-party accounts managed on their behalf.
package client

import (
	"time"

	"github.com/Strob0t/ClientForge/internal/domain/booking"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

// Status is the lifecycle state of a client.
type Status string

const (
	StatusLead      Status = "lead"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Client is a prospect or customer of the consultancy.
type Client struct {
	ID                  string           `json:"id"`
	FirstName           string           `json:"first_name"`
	LastName            string           `json:"last_name"`
	Email               string           `json:"email"`
	Phone               string           `json:"phone"`
	RoleType            booking.RoleType `json:"role_type"`
	CompanyName         string           `json:"company_name,omitempty"`
	ProjectDescription  string           `json:"project_description"`
	OriginalDescription string           `json:"original_description,omitempty"`
	AISummarized        bool             `json:"ai_summarized"`
	Timeline            string           `json:"timeline,omitempty"`
	StartDate           *time.Time       `json:"start_date,omitempty"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	Budget              float64          `json:"budget"`
	Urgency             int              `json:"urgency"`
	Status              Status           `json:"status"`
	Version             int              `json:"version"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// FullName joins the first and last name.
func (c *Client) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// CreateRequest is the input for creating a client from the admin API.
type CreateRequest struct {
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone"`
	RoleType           booking.RoleType `json:"role_type"`
	CompanyName        string           `json:"company_name"`
	ProjectDescription string           `json:"project_description"`
	Timeline           string           `json:"timeline"`
	StartDate          *time.Time       `json:"start_date"`
	EndDate            *time.Time       `json:"end_date"`
	Budget             float64          `json:"budget"`
	Urgency            int              `json:"urgency"`
	Status             Status           `json:"status"`

	// Set by the intake flow only.
	OriginalDescription string `json:"-"`
	AISummarized        bool   `json:"-"`
}

// UpdateRequest holds the fields an admin may change. Nil fields are left as is.
type UpdateRequest struct {
	FirstName          *string           `json:"first_name"`
	LastName           *string           `json:"last_name"`
	Email              *string           `json:"email"`
	Phone              *string           `json:"phone"`
	RoleType           *booking.RoleType `json:"role_type"`
	CompanyName        *string           `json:"company_name"`
	ProjectDescription *string           `json:"project_description"`
	Timeline           *string           `json:"timeline"`
	Budget             *float64          `json:"budget"`
	Urgency            *int              `json:"urgency"`
	Status             *Status           `json:"status"`
	Version            int               `json:"version"`
}

// Apply copies the set fields of req onto c.
func (req *UpdateRequest) Apply(c *Client) {
	setIf(&c.FirstName, req.FirstName)
	setIf(&c.LastName, req.LastName)
	setIf(&c.Email, req.Email)
	setIf(&c.Phone, req.Phone)
	setIf(&c.RoleType, req.RoleType)
	setIf(&c.CompanyName, req.CompanyName)
	setIf(&c.ProjectDescription, req.ProjectDescription)
	setIf(&c.Timeline, req.Timeline)
	setIf(&c.Budget, req.Budget)
	setIf(&c.Urgency, req.Urgency)
	setIf(&c.Status, req.Status)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// FromBooking maps an intake form onto a CreateRequest. Dates and budget
// that fail to parse are left empty; the form has already been validated.
func FromBooking(b *booking.Request) CreateRequest {
	req := CreateRequest{
		FirstName:          b.FirstName,
		LastName:           b.LastName,
		Email:              b.Email,
		Phone:              b.Phone,
		RoleType:           b.RoleType,
		CompanyName:        b.CompanyName,
		ProjectDescription: b.ProjectDescription,
		Timeline:           b.Timeline,
		StartDate:          timeline.ParseDate(b.StartDate, time.UTC),
		EndDate:            timeline.ParseDate(b.EndDate, time.UTC),
		Urgency:            b.Urgency,
		Status:             StatusLead,
	}
	if v, err := booking.ParseBudget(b.Budget); err == nil {
		req.Budget = v
	}
	return req
}

// ListFilter narrows a client listing.
type ListFilter struct {
	Status Status
	Search string
	Limit  int
	Offset int
}

// Overview aggregates everything known about one client.
type Overview struct {
	Client    Client           `json:"client"`
	Notes     []Note           `json:"notes"`
	Contracts []Contract       `json:"contracts"`
	Timeline  []timeline.Event `json:"timeline"`
	TechStack []TechStackItem  `json:"tech_stack"`
	Accounts  []AdminAccount   `json:"accounts"`
}
