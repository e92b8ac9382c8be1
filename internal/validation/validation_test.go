package validation_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/validation"
)

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:            "Ana",
		Phone:           "11999990000",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Address: domain.Address{
			CEP: "01000-000", Street: "Rua A", Number: "10", Neighborhood: "Centro", City: "São Paulo",
		},
		TenantID: "acme-pizza",
	}
}

func TestStruct_ValidRegister(t *testing.T) {
	req := validRegister()
	if err := validation.Struct(&req); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestStruct_PasswordMismatch(t *testing.T) {
	req := validRegister()
	req.ConfirmPassword = "other12"

	err := validation.Struct(&req)
	var valErr *domain.ErrValidation
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if valErr.Field != "ConfirmPassword" {
		t.Errorf("unexpected field %q", valErr.Field)
	}
	if valErr.Message != "as senhas não coincidem" {
		t.Errorf("unexpected message %q", valErr.Message)
	}
}

func TestStruct_ReportsJSONFieldName(t *testing.T) {
	req := validRegister()
	req.Email = "not-an-email"

	err := validation.Struct(&req)
	var valErr *domain.ErrValidation
	if !errors.As(err, &valErr) || valErr.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestTenantSlug(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"acme-pizza", true},
		{"pizza123", true},
		{"Acme", false},
		{"acme--pizza", false},
		{"-acme", false},
		{"acme pizza", false},
		{"", false},
	}

	for _, tt := range tests {
		req := domain.CreateTenantRequest{
			TenantID:   domain.TenantID(tt.slug),
			Name:       "Acme",
			AdminName:  "Admin",
			AdminEmail: "admin@acme.com",
			Password:   "secret1",
		}
		err := validation.Struct(&req)
		if (err == nil) != tt.ok {
			t.Errorf("slug %q: expected ok=%v, got err=%v", tt.slug, tt.ok, err)
		}
		if validation.ValidSlug(tt.slug) != tt.ok {
			t.Errorf("ValidSlug(%q) != %v", tt.slug, tt.ok)
		}
	}
}
