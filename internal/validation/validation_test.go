package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nexusaquarium/internal/errors"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@x.com", true},
		{"first.last+tag@sub.example.org", true},
		{"A_B-c@EXAMPLE.IO", true},
		{"", false},
		{"plain", false},
		{"a@x", false},
		{"a@x.c", false},
		{"a b@x.com", false},
		{"@x.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEmail(tt.in), tt.in)
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abc12345", true},
		{"pässwört1", true},
		{"short", false},
		{"abc1234", false},
		{"abcdefgh", false},
		{"12345678", false},
		{"", false},
		{strings.Repeat("a", 70) + "12", true},
		{strings.Repeat("a", 70) + "123", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsStrongPassword(tt.in), tt.in)
	}
}

type registration struct {
	Email       string  `json:"email" validate:"required,email_shape"`
	Password    string  `json:"password" validate:"required,strong_password"`
	DisplayName *string `json:"displayName" validate:"omitempty,display_name"`
}

func TestValidator_Struct(t *testing.T) {
	long := "this display name is definitely longer than fifty characters"
	ok := "Nemo"
	v := New()

	tests := []struct {
		name      string
		input     registration
		wantField string
		wantMsg   string
	}{
		{"valid", registration{Email: "a@x.com", Password: "abc12345", DisplayName: &ok}, "", ""},
		{"valid without display name", registration{Email: "a@x.com", Password: "abc12345"}, "", ""},
		{"missing email", registration{Password: "abc12345"}, "email", "email is required"},
		{"bad email", registration{Email: "nope", Password: "abc12345"}, "email", MsgInvalidEmail},
		{"weak password", registration{Email: "a@x.com", Password: "short"}, "password", MsgWeakPassword},
		{"password over bcrypt limit", registration{Email: "a@x.com", Password: strings.Repeat("a", 70) + "12345"}, "password", MsgLongPassword},
		{"long display name", registration{Email: "a@x.com", Password: "abc12345", DisplayName: &long}, "displayName", "displayName must be at most 50 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}
}

type device struct {
	DeviceOS string `json:"deviceOs" validate:"required,device_os"`
}

func TestValidator_DeviceOSLength(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(device{DeviceOS: "android"}))

	err := v.Struct(device{DeviceOS: "windows-mobile"})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "deviceOs must be at most 10 characters", verr.Message)
}
