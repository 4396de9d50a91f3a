package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/courtline/court-booking/internal/catalog"
	"github.com/courtline/court-booking/internal/domain"
	apperrors "github.com/courtline/court-booking/pkg/util/errorutil"
)

// Validator checks request payloads and reports failures as INVALID_INPUT.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the court and slot rules on a fresh validator.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("court_type", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseCourtType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("time_slot", func(fl validator.FieldLevel) bool {
		return catalog.IsValidTimeSlot(strings.TrimSpace(fl.Field().String()))
	})
	return &Validator{validate: v}
}

// Validate runs struct validation on payload.
func (v *Validator) Validate(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = describe(fe)
	}
	return apperrors.NewInvalidInput("invalid request", details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be a positive integer"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "must be a calendar date in YYYY-MM-DD format"
	case "court_type":
		return "must be one of rubber, hard"
	case "time_slot":
		return "must be one of the hourly slots between 06:00 and 24:00"
	}
	return "is invalid"
}
