package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/sofreh/pkg/validate"
)

type checkoutInput struct {
	Address string `json:"address" validate:"required,min=5"`
	Phone   string `json:"phone"   validate:"required,regex=^0\d{10}$"`
	Note    string `json:"note"    validate:"nullable,max=500"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(checkoutInput{
		Address: "12 Valiasr St, Tehran",
		Phone:   "09121234567",
		Note:    "", // nullable — allowed to be empty
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(checkoutInput{})
	if !validate.HasErrors(errs) {
		t.Error("expected required errors")
	}
	if _, ok := errs["address"]; !ok {
		t.Error("expected address to be required")
	}
	if _, ok := errs["phone"]; !ok {
		t.Error("expected phone to be required")
	}
}

func TestRegexRule(t *testing.T) {
	type in struct {
		Phone string `json:"phone" validate:"required,regex=^0\d{10}$"`
	}
	if errs := validate.Struct(in{Phone: "12345"}); !validate.HasErrors(errs) {
		t.Error("expected short phone to fail")
	}
	if errs := validate.Struct(in{Phone: "9121234567"}); !validate.HasErrors(errs) {
		t.Error("expected phone without leading zero to fail")
	}
	if errs := validate.Struct(in{Phone: "09121234567"}); validate.HasErrors(errs) {
		t.Errorf("expected valid phone to pass, got: %v", errs)
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Guests int `json:"guests" validate:"required,gte=1,lte=50"`
	}
	if errs := validate.Struct(in{Guests: 80}); !validate.HasErrors(errs) {
		t.Error("expected guests > 50 to fail")
	}
	if errs := validate.Struct(in{Guests: 4}); validate.HasErrors(errs) {
		t.Errorf("expected 4 guests to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=pending,confirmed,cancelled"`
	}
	if errs := validate.Struct(in{Status: "unknown"}); !validate.HasErrors(errs) {
		t.Error("expected invalid status to fail")
	}
	if errs := validate.Struct(in{Status: "confirmed"}); validate.HasErrors(errs) {
		t.Errorf("expected confirmed to pass: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Note string `json:"note" validate:"nullable,min=10"`
	}
	// Empty string — nullable, should pass even though it's shorter than 10.
	if errs := validate.Struct(in{Note: ""}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	if errs := validate.Struct(in{Note: "short"}); !validate.HasErrors(errs) {
		t.Error("expected short non-empty note to fail")
	}
}

func TestDateRule(t *testing.T) {
	type in struct {
		Date string `json:"date" validate:"required,date"`
	}
	if errs := validate.Struct(in{Date: "2026-09-14"}); validate.HasErrors(errs) {
		t.Errorf("expected ISO date to pass: %v", errs)
	}
	if errs := validate.Struct(in{Date: "not-a-date"}); !validate.HasErrors(errs) {
		t.Error("expected invalid date to fail")
	}
}

func TestNumericRule(t *testing.T) {
	type in struct {
		Price string `json:"price" validate:"required,numeric"`
	}
	if errs := validate.Struct(in{Price: "12500"}); validate.HasErrors(errs) {
		t.Errorf("expected numeric string to pass: %v", errs)
	}
	if errs := validate.Struct(in{Price: "cheap"}); !validate.HasErrors(errs) {
		t.Error("expected non-numeric price to fail")
	}
}

func TestMinLengthRule(t *testing.T) {
	type in struct {
		Name string `json:"name" validate:"required,min=3"`
	}
	if errs := validate.Struct(in{Name: "ab"}); !validate.HasErrors(errs) {
		t.Error("expected 2-char name to fail")
	}
	if errs := validate.Struct(in{Name: "Sofreh Kitchen"}); validate.HasErrors(errs) {
		t.Errorf("expected long name to pass: %v", errs)
	}
}
