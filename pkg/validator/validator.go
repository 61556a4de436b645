package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/scholaco/tracker/internal/domain"
)

// DateLayout is the form format for deadlines.
const DateLayout = "2006-01-02"

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Use JSON tag names instead of struct field names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	_ = v.RegisterValidation("appstatus", func(fl validator.FieldLevel) bool {
		return domain.ApplicationStatus(fl.Field().String()).Valid()
	})
	// An empty date is allowed; on update it clears the column.
	_ = v.RegisterValidation("datestr", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(DateLayout, s)
		return err == nil
	})
	_ = v.RegisterValidation("datetimestr", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := ParseDateTime(s)
		return err == nil
	})

	return &Validator{validate: v}
}

// ParseDateTime accepts RFC 3339 or the datetime-local form layout.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", s, time.Local)
}

// Validate checks i's struct tags. Failures wrap domain.ErrValidation.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return fmt.Errorf("%w: %s", domain.ErrValidation, formatValidationErrors(validationErrs))
		}
		return err
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		field := strings.ToLower(err.Field())

		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "appstatus":
			message = fmt.Sprintf("%s must be one of not_started, in_progress, awaiting", field)
		case "datestr":
			message = fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field)
		case "datetimestr":
			message = fmt.Sprintf("%s must be a date and time", field)
		default:
			message = fmt.Sprintf("%s failed validation for %s", field, err.Tag())
		}
		messages = append(messages, message)
	}

	return strings.Join(messages, "; ")
}
