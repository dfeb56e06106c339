package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateVar checks a primitive against a validator tag and turns a failure
// into a *ValidationError naming field.
func ValidateVar(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return NewValidationError(field, reason(ve[0]))
	}
	return NewValidationError(field, err.Error())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("is out of range (%s %s)", fe.Tag(), fe.Param())
	case "email":
		return "must be a valid email"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

// NormalizeText trims surrounding whitespace from free-text inputs.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}
