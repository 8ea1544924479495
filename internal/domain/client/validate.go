package client

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required: %w", field, domain.ErrValidation)
	}
	return nil
}

// ValidateCreate validates a CreateRequest.
func ValidateCreate(req *CreateRequest) error {
	if err := required("first_name", req.FirstName); err != nil {
		return err
	}
	if err := required("last_name", req.LastName); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("email %q is invalid: %w", req.Email, domain.ErrValidation)
	}
	if req.RoleType != "" {
		if err := booking.ValidateRoleType(req.RoleType); err != nil {
			return err
		}
	}
	if req.Budget < 0 {
		return domain.Invalid("budget must not be negative")
	}
	if req.Urgency < 0 || req.Urgency > 10 {
		return domain.Invalid("urgency must be between 0 and 10")
	}
	if req.Status == "" {
		req.Status = StatusLead
	}
	return ValidateStatus(req.Status)
}

// ValidateStatus checks if a client status value is valid.
func ValidateStatus(s Status) error {
	switch s {
	case StatusLead, StatusActive, StatusPaused, StatusCompleted, StatusArchived:
		return nil
	default:
		return fmt.Errorf("invalid client status %q: %w", s, domain.ErrValidation)
	}
}

// ValidateNote validates a CreateNoteRequest.
func ValidateNote(req *CreateNoteRequest) error {
	return required("body", req.Body)
}

// ValidateContract validates a CreateContractRequest and applies defaults.
func ValidateContract(req *CreateContractRequest) error {
	if err := required("title", req.Title); err != nil {
		return err
	}
	if req.Value < 0 {
		return domain.Invalid("value must not be negative")
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if len(req.Currency) != 3 {
		return domain.Invalid("currency must be a 3-letter code")
	}
	req.Currency = strings.ToUpper(req.Currency)
	if req.Status == "" {
		req.Status = ContractDraft
	}
	return ValidateContractStatus(req.Status)
}

// ValidateContractStatus checks if a contract status value is valid.
func ValidateContractStatus(s ContractStatus) error {
	switch s {
	case ContractDraft, ContractSent, ContractSigned, ContractCancelled:
		return nil
	default:
		return fmt.Errorf("invalid contract status %q: %w", s, domain.ErrValidation)
	}
}

// ValidateTechStack validates a CreateTechStackRequest.
func ValidateTechStack(req *CreateTechStackRequest) error {
	if err := required("category", req.Category); err != nil {
		return err
	}
	return required("name", req.Name)
}

// ValidateAccount validates a CreateAccountRequest.
func ValidateAccount(req *CreateAccountRequest) error {
	if err := required("service", req.Service); err != nil {
		return err
	}
	if err := required("username", req.Username); err != nil {
		return err
	}
	return required("secret", req.Secret)
}

// ValidateUpdated re-checks a client after an UpdateRequest was applied.
func ValidateUpdated(c *Client) error {
	req := CreateRequest{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		RoleType:  c.RoleType,
		Budget:    c.Budget,
		Urgency:   c.Urgency,
		Status:    c.Status,
	}
	if err := ValidateCreate(&req); err != nil {
		return err
	}
	c.Status = req.Status
	return nil
}

// ValidateUpdatedContract re-checks a contract after an update was applied
// and normalizes its currency.
func ValidateUpdatedContract(c *Contract) error {
	req := CreateContractRequest{Title: c.Title, Value: c.Value, Currency: c.Currency, Status: c.Status}
	if err := ValidateContract(&req); err != nil {
		return err
	}
	c.Currency, c.Status = req.Currency, req.Status
	return nil
}
