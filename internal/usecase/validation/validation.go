// Package validation holds the request validator shared by the usecases.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/security"
)

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3}$`)
	upiPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}$`)
)

// New returns a validator with the custom tags used by request DTOs:
// mobile (10 digits), cardexpiry (MM/YY), cvv (3 digits) and upi (name@bank).
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return security.IsMobileNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("cardexpiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
		return cvvPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("upi", func(fl validator.FieldLevel) bool {
		return upiPattern.MatchString(fl.Field().String())
	})
	return v
}

// Format converts validator.ValidationErrors into a human-readable validation error.
func Format(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required", "required_if":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
		case "mobile":
			messages = append(messages, fmt.Sprintf("%s must be a 10-digit mobile number", e.Field()))
		case "cardexpiry":
			messages = append(messages, fmt.Sprintf("%s must be in MM/YY format", e.Field()))
		case "cvv":
			messages = append(messages, fmt.Sprintf("%s must be 3 digits", e.Field()))
		case "upi":
			messages = append(messages, fmt.Sprintf("%s must be a valid UPI ID", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	field := ""
	if len(validationErrors) == 1 {
		field = validationErrors[0].Field()
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}

// Struct validates s with v and formats any failure.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		return Format(err)
	}
	return nil
}
