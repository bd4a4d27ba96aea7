// Package validation performs field-level validation with aggregated errors.
//
// Every violated rule is collected into a single ValidationFailed error so
// callers see all problems at once instead of fixing them one round-trip at
// a time.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"tekblog/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v against its `validate` tags. On failure it returns a
// ValidationFailed AppError whose message joins every violated rule.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, messageFor(fe))
	}
	return models.NewValidationError(strings.Join(messages, ", "))
}

// Var validates a single value against a tag expression, labeling failures
// with the given field name.
func Var(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, message(field, fe.Tag(), fe.Param()))
	}
	return models.NewValidationError(strings.Join(messages, ", "))
}

func messageFor(fe validator.FieldError) string {
	return message(fe.Field(), fe.Tag(), fe.Param())
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "email":
		return fmt.Sprintf("%s is invalid", field)
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and numbers", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
