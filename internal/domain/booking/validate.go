package booking

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Strob0t/ClientForge/internal/domain"
)

// FieldErrors maps form field names to a user-facing message.
type FieldErrors map[string]string

// Error lists the failing fields in a stable order.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid booking: " + strings.Join(parts, "; ")
}

// Unwrap makes FieldErrors match domain.ErrValidation.
func (fe FieldErrors) Unwrap() error { return domain.ErrValidation }

// Err returns fe as an error, or nil when there are no field errors.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneCharsPattern = regexp.MustCompile(`^[\d\s()\-]+$`)
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
	maxUrgency     = 10
)

// ValidateContactInfo checks the contact step of the form.
func ValidateContactInfo(r *Request) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(r.FirstName) == "" {
		errs["first_name"] = "First name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs["last_name"] = "Last name is required"
	}

	email := strings.TrimSpace(r.Email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Please enter a valid email address"
	}

	if msg := phoneError(r.Phone); msg != "" {
		errs["phone"] = msg
	}

	if err := ValidateRoleType(r.RoleType); err != nil {
		errs["role_type"] = "Please select your role"
	}
	return errs
}

func phoneError(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "Phone number is required"
	}
	if !phoneCharsPattern.MatchString(phone) {
		return "Phone number may only contain digits, spaces, parentheses and hyphens"
	}
	n := len(PhoneDigits(phone))
	if n < minPhoneDigits || n > maxPhoneDigits {
		return fmt.Sprintf("Phone number must have %d to %d digits", minPhoneDigits, maxPhoneDigits)
	}
	return ""
}

// ValidateProjectDetails checks the project step of the form.
func ValidateProjectDetails(r *Request) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(r.ProjectDescription) == "" {
		errs["project_description"] = "Project description is required"
	}
	if strings.TrimSpace(r.StartDate) == "" {
		errs["start_date"] = "Start date is required"
	}

	if strings.TrimSpace(r.Budget) == "" {
		errs["budget"] = "Budget is required"
	} else if b, err := ParseBudget(r.Budget); err != nil || b <= 0 {
		errs["budget"] = "Budget must be greater than 0"
	}

	if r.Urgency < 0 || r.Urgency > maxUrgency {
		errs["urgency"] = fmt.Sprintf("Urgency must be between 0 and %d", maxUrgency)
	}
	return errs
}

// Validate checks the whole form.
func Validate(r *Request) error {
	errs := ValidateContactInfo(r)
	for k, v := range ValidateProjectDetails(r) {
		errs[k] = v
	}
	return errs.Err()
}

// ValidateRoleType checks if a role value is one of the known roles.
func ValidateRoleType(rt RoleType) error {
	switch rt {
	case RoleFounder, RoleEmployee, RoleBusinessRepresentative, RoleOther:
		return nil
	default:
		return fmt.Errorf("invalid role type %q: %w", rt, domain.ErrValidation)
	}
}

// ParseBudget reads a budget such as "15000", "15,000" or "$15,000.50".
// NaN and infinities are rejected.
func ParseBudget(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	b, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return 0, fmt.Errorf("budget %q is not a finite number", s)
	}
	return b, nil
}
