package messagequeue

// ClientBookedPayload is the schema for clients.booked messages.
type ClientBookedPayload struct {
	ClientID     string  `json:"client_id"`
	Email        string  `json:"email"`
	CompanyName  string  `json:"company_name"`
	RoleType     string  `json:"role_type"`
	Budget       float64 `json:"budget"`
	Urgency      int     `json:"urgency"`
	AISummarized bool    `json:"ai_summarized"`
}

// ClientSummarizedPayload is the schema for clients.summarized messages.
type ClientSummarizedPayload struct {
	ClientID    string `json:"client_id"`
	Description string `json:"description"`
}

// CalendarBookedPayload is the schema for clients.calendar messages.
type CalendarBookedPayload struct {
	ClientID  string `json:"client_id"`
	EventID   string `json:"event_id"`
	StartTime string `json:"start_time"`
}

// TimelineImportedPayload is the schema for timeline.imported messages.
type TimelineImportedPayload struct {
	ClientID string `json:"client_id"`
	Created  int    `json:"created"`
	Skipped  int    `json:"skipped"`
	UsedAI   bool   `json:"used_ai"`
}
