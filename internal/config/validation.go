package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// getValidationMessage converts a validator tag into a human-readable message.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context.
type ValidationError struct {
	FieldPath string // Dot-notation field path (e.g., "router.url")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("hostport_or_empty", validateHostPortOrEmpty); err != nil {
		panic(err)
	}

	// Report field names using the "toml" tag so messages match the file.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate validates the entire configuration and returns all validation
// errors at once.
func (c *Config) Validate() error {
	var validationErrors ValidationErrors

	if c.Router == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "router",
			Message:   "configuration must contain a 'router' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.Router); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "router")...)
	}

	if c.Tracker != nil {
		if err := validate.Struct(c.Tracker); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "tracker")...)
		}
		if c.Tracker.DNS != nil {
			if err := validate.Struct(c.Tracker.DNS); err != nil {
				validationErrors = append(validationErrors, convertValidatorErrors(err, "tracker.dns")...)
			}
		}
	}

	if c.API != nil {
		if err := validate.Struct(c.API); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "api")...)
		}
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// convertValidatorErrors converts go-playground/validator errors to our
// ValidationError format.
func convertValidatorErrors(err error, fieldPrefix string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + e.Field()
				} else {
					fieldPath = e.Field()
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	} else if err != nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: fieldPrefix,
			Message:   err.Error(),
		})
	}

	return validationErrors
}

// Custom validator: "host:port" or empty.
func validateHostPortOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.SplitHostPort(value)
	return err == nil
}
