// Package validation holds the request rules shared by the HTTP layer and
// the services: email shape, password strength and field lengths.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "nexusaquarium/internal/errors"
	"nexusaquarium/internal/model"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt will hash.
	MaxPasswordBytes = 72

	tagEmail       = "email_shape"
	tagPassword    = "strong_password"
	tagDisplayName = "display_name"
	tagDeviceOS    = "device_os"
)

// maxRunes bounds the length of the custom length tags.
var maxRunes = map[string]int{
	tagDisplayName: model.MaxDisplayNameLength,
	tagDeviceOS:    model.MaxDeviceOSLength,
}

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Messages returned to clients, per failed rule.
const (
	MsgInvalidEmail  = "Invalid email format"
	MsgWeakPassword  = "Password must be at least 8 characters with at least one letter and one number"
	MsgLongPassword  = "Password must be at most 72 bytes"
	MsgRequiredField = "%s is required"
	MsgTooLong       = "%s must be at most %s characters"
	MsgInvalidField  = "%s is invalid"
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsStrongPassword reports whether s has at least MinPasswordLength
// characters, one letter and one digit, and fits in MaxPasswordBytes.
func IsStrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLength || len(s) > MaxPasswordBytes {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// Validator wraps validator.Validate with the project rules registered.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator. Field names in errors are taken from json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation(tagEmail, func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation(tagPassword, func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	for tag, n := range maxRunes {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return utf8.RuneCountInString(fl.Field().String()) <= n
		})
	}
	return &Validator{validate: v}
}

// Struct validates s and converts the first failure into an
// *apperrors.ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return toValidationError(verrs[0])
}

func toValidationError(fe validator.FieldError) *apperrors.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case tagEmail:
		return apperrors.NewValidationError(field, MsgInvalidEmail)
	case tagPassword:
		if pw, ok := fe.Value().(string); ok && len(pw) > MaxPasswordBytes {
			return apperrors.NewValidationError(field, MsgLongPassword)
		}
		return apperrors.NewValidationError(field, MsgWeakPassword)
	case tagDisplayName, tagDeviceOS:
		return apperrors.NewValidationError(field, fmt.Sprintf(MsgTooLong, field, strconv.Itoa(maxRunes[fe.Tag()])))
	case "required":
		return apperrors.NewValidationError(field, fmt.Sprintf(MsgRequiredField, field))
	case "max":
		return apperrors.NewValidationError(field, fmt.Sprintf(MsgTooLong, field, fe.Param()))
	default:
		return apperrors.NewValidationError(field, fmt.Sprintf(MsgInvalidField, field))
	}
}
