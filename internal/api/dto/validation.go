package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report json field names in messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks struct tags and returns a validation DomainError whose
// details map each offending field to its message.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	messages := make([]string, 0, len(validationErrors))
	details := make(map[string]any, len(validationErrors))
	for _, fe := range validationErrors {
		msg := fieldErrorMessage(fe)
		messages = append(messages, msg)
		details[fe.Field()] = msg
	}
	return apperrors.NewValidationError(strings.Join(messages, "; "), details)
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(param, " ", ", "))
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and digits", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
