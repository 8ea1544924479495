package booking

import (
	"errors"
	"strings"
	"testing"

	"github.com/Strob0t/ClientForge/internal/domain"
)

func validRequest() Request {
	return Request{
		FirstName:          "Ada",
		LastName:           "Lovelace",
		Email:              "ada@example.com",
		Phone:              "(555) 123-4567",
		RoleType:           RoleFounder,
		ProjectDescription: "Inventory dashboard for a bakery chain",
		StartDate:          "2026-11-01",
		Budget:             "15000",
		Urgency:            5,
	}
}

func TestValidateContactInfo(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
		field  string
	}{
		{"blank first name", func(r *Request) { r.FirstName = "   " }, "first_name"},
		{"blank last name", func(r *Request) { r.LastName = "" }, "last_name"},
		{"missing email", func(r *Request) { r.Email = "" }, "email"},
		{"email without tld", func(r *Request) { r.Email = "ada@example" }, "email"},
		{"email with space", func(r *Request) { r.Email = "a da@example.com" }, "email"},
		{"missing phone", func(r *Request) { r.Phone = "" }, "phone"},
		{"phone too short", func(r *Request) { r.Phone = "555-1234" }, "phone"},
		{"phone too long", func(r *Request) { r.Phone = "1234567890123456" }, "phone"},
		{"phone with letters", func(r *Request) { r.Phone = "555-CALL-NOW1" }, "phone"},
		{"phone with plus", func(r *Request) { r.Phone = "+1 555 123 4567" }, "phone"},
		{"unknown role", func(r *Request) { r.RoleType = "investor" }, "role_type"},
		{"missing role", func(r *Request) { r.RoleType = "" }, "role_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.modify(&r)
			errs := ValidateContactInfo(&r)
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, errs)
			}
			if len(errs) != 1 {
				t.Errorf("expected exactly one field error, got %v", errs)
			}
		})
	}
}

func TestValidateContactInfoValid(t *testing.T) {
	for _, phone := range []string{"5551234567", "(555) 123-4567", "555 123 4567", "44 20 7946 0958 12"} {
		r := validRequest()
		r.Phone = phone
		if errs := ValidateContactInfo(&r); len(errs) != 0 {
			t.Errorf("phone %q: unexpected errors %v", phone, errs)
		}
	}
}

func TestValidateProjectDetails(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
		field  string
	}{
		{"blank description", func(r *Request) { r.ProjectDescription = " \n " }, "project_description"},
		{"missing start date", func(r *Request) { r.StartDate = "" }, "start_date"},
		{"missing budget", func(r *Request) { r.Budget = "" }, "budget"},
		{"zero budget", func(r *Request) { r.Budget = "0" }, "budget"},
		{"negative budget", func(r *Request) { r.Budget = "-10" }, "budget"},
		{"non-numeric budget", func(r *Request) { r.Budget = "lots" }, "budget"},
		{"NaN budget", func(r *Request) { r.Budget = "NaN" }, "budget"},
		{"infinite budget", func(r *Request) { r.Budget = "Inf" }, "budget"},
		{"positive infinite budget", func(r *Request) { r.Budget = "+Inf" }, "budget"},
		{"urgency below range", func(r *Request) { r.Urgency = -1 }, "urgency"},
		{"urgency above range", func(r *Request) { r.Urgency = 11 }, "urgency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.modify(&r)
			errs := ValidateProjectDetails(&r)
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidateProjectDetailsBoundaries(t *testing.T) {
	for _, u := range []int{0, 10} {
		r := validRequest()
		r.Urgency = u
		if errs := ValidateProjectDetails(&r); len(errs) != 0 {
			t.Errorf("urgency %d: unexpected errors %v", u, errs)
		}
	}
	r := validRequest()
	r.Budget = "$12,500.50"
	if errs := ValidateProjectDetails(&r); len(errs) != 0 {
		t.Errorf("formatted budget rejected: %v", errs)
	}
}

func TestParseBudgetRejectsNonFinite(t *testing.T) {
	for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "$Infinity"} {
		if _, err := ParseBudget(in); err == nil {
			t.Errorf("ParseBudget(%q) should fail", in)
		}
	}
	b, err := ParseBudget("$15,000.50")
	if err != nil || b != 15000.50 {
		t.Errorf("ParseBudget formatted = %v, %v", b, err)
	}
}

func TestValidate(t *testing.T) {
	r := validRequest()
	if err := Validate(&r); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	r.Email = "nope"
	r.Budget = "0"
	err := Validate(&r)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	fe, ok := AsFieldErrors(err)
	if !ok {
		t.Fatal("expected FieldErrors")
	}
	if len(fe) != 2 {
		t.Errorf("expected 2 field errors, got %v", fe)
	}
	if !strings.HasPrefix(err.Error(), "invalid booking: budget:") {
		t.Errorf("fields should be listed in order, got %q", err.Error())
	}
}

func TestValidateRoleType(t *testing.T) {
	for _, rt := range []RoleType{RoleFounder, RoleEmployee, RoleBusinessRepresentative, RoleOther} {
		if err := ValidateRoleType(rt); err != nil {
			t.Errorf("%s: %v", rt, err)
		}
	}
	if err := ValidateRoleType("ceo"); err == nil {
		t.Error("expected error for unknown role")
	}
}
