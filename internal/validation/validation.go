// Package validation runs the client-side form checks that must pass
// before any backend call is attempted.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/go-playground/validator/v10"
)

var tenantSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names in errors.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("tenantslug", func(fl validator.FieldLevel) bool {
			return tenantSlug.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidSlug reports whether s is a well-formed tenant identifier.
func ValidSlug(s string) bool {
	return tenantSlug.MatchString(s)
}

// Struct validates v and converts the first failure into an ErrValidation.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ErrValidation{Field: "form", Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &domain.ErrValidation{Field: fe.Field(), Message: message(fe)}
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "email inválido"
	case "min":
		if e.Kind() == reflect.String {
			return "deve ter pelo menos " + e.Param() + " caracteres"
		}
		return "deve ser no mínimo " + e.Param()
	case "eqfield":
		return "as senhas não coincidem"
	case "url":
		return "URL inválida"
	case "hexcolor":
		return "cor inválida"
	case "tenantslug":
		return "use apenas letras minúsculas, números e hífens"
	default:
		return "valor inválido"
	}
}
