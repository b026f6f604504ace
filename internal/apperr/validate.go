package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the `validate` tags of v and folds the failures
// into a single ValidationFailed error.
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	return FromValidator(err)
}

// FromValidator converts validator output (also what gin binding returns)
// into a ValidationFailed error listing each field.
func FromValidator(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &Error{Kind: ValidationFailed, Message: "invalid input", Err: err}
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := LowerCamel(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		case "email":
			details = append(details, fmt.Sprintf("%s must be a valid email", field))
		case "gte", "gt", "min":
			details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", field))
		}
	}
	return &Error{Kind: ValidationFailed, Message: strings.Join(details, ", ")}
}

func LowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
