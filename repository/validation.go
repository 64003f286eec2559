package repository

import (
	"errors"
	"fmt"
	"strings"

	"dynoquery/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs struct tag validation and reports failures as ErrInvalidValue
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", models.ErrInvalidValue, formatValidationErrors(err))
}

// formatValidationErrors formats validation errors into readable messages
func formatValidationErrors(err error) string {
	var errorMessages []string

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			errorMessages = append(errorMessages, fieldError.Field()+" is required")
		case "min":
			errorMessages = append(errorMessages, fieldError.Field()+" must be at least "+fieldError.Param()+" characters")
		case "max":
			errorMessages = append(errorMessages, fieldError.Field()+" must be at most "+fieldError.Param()+" characters")
		default:
			errorMessages = append(errorMessages, fieldError.Field()+" is invalid")
		}
	}

	return strings.Join(errorMessages, "; ")
}
