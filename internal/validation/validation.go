// Package validation checks repository inputs with go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"socialvibe/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Struct validates v against its `validate` tags and returns a
// VALIDATION_ERROR describing the first failing field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewInternalError(err)
	}
	return models.NewValidationError(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Registration is the input to account creation.
type Registration struct {
	Username string `validate:"notblank,max=30"`
	Email    string `validate:"notblank,email"`
	Password string `validate:"required"`
}

// Profile holds the profile fields being changed. Nil fields are not checked.
type Profile struct {
	Username *string `validate:"omitnil,notblank,max=30"`
	Email    *string `validate:"omitnil,notblank,email"`
	Bio      *string `validate:"omitnil,max=500"`
	Website  *string `validate:"omitnil,max=200"`
}

// Listing is the input to creating or editing a marketplace product.
type Listing struct {
	Title       string   `validate:"notblank,max=120"`
	Description string   `validate:"notblank,max=2000"`
	ImageURLs   []string `validate:"max=5"`
}

// Report is the input to reporting a post.
type Report struct {
	PostID string `validate:"notblank"`
	Reason string `validate:"notblank,max=500"`
}
