package client

import "time"

// Note is a free-text remark about a client.
type Note struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateNoteRequest is the input for adding a note.
type CreateNoteRequest struct {
	Body   string `json:"body"`
	Author string `json:"author"`
}

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractSent      ContractStatus = "sent"
	ContractSigned    ContractStatus = "signed"
	ContractCancelled ContractStatus = "cancelled"
)

// Contract is an agreement with a client.
type Contract struct {
	ID        string         `json:"id"`
	ClientID  string         `json:"client_id"`
	Title     string         `json:"title"`
	Value     float64        `json:"value"`
	Currency  string         `json:"currency"`
	Status    ContractStatus `json:"status"`
	SignedAt  *time.Time     `json:"signed_at,omitempty"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateContractRequest is the input for creating a contract.
type CreateContractRequest struct {
	Title    string         `json:"title"`
	Value    float64        `json:"value"`
	Currency string         `json:"currency"`
	Status   ContractStatus `json:"status"`
}

// UpdateContractRequest changes a contract's status or terms.
type UpdateContractRequest struct {
	Title    *string         `json:"title"`
	Value    *float64        `json:"value"`
	Currency *string         `json:"currency"`
	Status   *ContractStatus `json:"status"`
	Version  int             `json:"version"`
}

// TechStackItem is one technology used in a client project.
type TechStackItem struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	Version   string    `json:"version,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTechStackRequest is the input for adding a tech stack item.
type CreateTechStackRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Notes    string `json:"notes"`
}

// AdminAccount is a third-party login held on behalf of a client, such as
// a hosting or registrar account. The secret is stored encrypted and is
// never serialized.
type AdminAccount struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	Service         string    `json:"service"`
	URL             string    `json:"url,omitempty"`
	Username        string    `json:"username"`
	EncryptedSecret []byte    `json:"-"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateAccountRequest carries a plaintext secret that is encrypted before storage.
type CreateAccountRequest struct {
	Service  string `json:"service"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
	Notes    string `json:"notes"`
}

// RevealedAccount is returned only by the explicit reveal endpoint.
type RevealedAccount struct {
	AdminAccount
	Secret string `json:"secret"`
}

// Apply copies the set fields of req onto c.
func (req *UpdateContractRequest) Apply(c *Contract) {
	setIf(&c.Title, req.Title)
	setIf(&c.Value, req.Value)
	setIf(&c.Currency, req.Currency)
	setIf(&c.Status, req.Status)
}
