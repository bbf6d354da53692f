package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type testPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Seats int    `json:"seats" validate:"gte=2"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Name:  "alice",
		Email: "alice@example.com",
		Seats: 4,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Name:  "",
		Email: "invalid",
		Seats: 1,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundEmail := false
	for _, v := range vErrs {
		if v.Field == "email" {
			foundEmail = true
		}
	}

	if !foundEmail {
		t.Fatal("expected email field to be present in validation errors")
	}
}

func TestMobileRule(t *testing.T) {
	type payload struct {
		Mobile string `json:"mobile" validate:"required,mobile"`
	}

	for _, valid := range []string{"+21650000000", "21650000000", "0021650000000"} {
		if err := ValidateStruct(payload{Mobile: valid}); err != nil {
			t.Fatalf("expected %q to pass, got %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "1234567", "+216 50 000 000", "phone"} {
		if err := ValidateStruct(payload{Mobile: invalid}); err == nil {
			t.Fatalf("expected %q to fail validation", invalid)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("tunisian_mobile", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) == 12
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"tunisian_mobile"`
	}

	if err := ValidateStruct(custom{Value: "+21650000000"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "50000000"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}
