package model

import (
	"testing"

	"social_moderation/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
		msg   string
	}{
		{"1234567", true, ""},
		{"12345", false, "Phone number must be at least 7 characters"},
		{"12a4567", false, "Phone number must contain only digits"},
		{"", false, "Phone number is required"},
		{"   ", false, "Phone number is required"},
		{"+1234567", false, "Phone number must contain only digits"},
	}

	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			err := ValidatePhone(tc.phone)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var ve *apperr.ValidationError
			if assert.ErrorAs(t, err, &ve) {
				assert.Equal(t, "phoneNo", ve.Field)
				assert.Equal(t, tc.msg, ve.Message)
			}
		})
	}
}

func TestParsePhone(t *testing.T) {
	n, err := ParsePhone("5551234")
	assert.NoError(t, err)
	assert.EqualValues(t, 5551234, n)

	_, err = ParsePhone("99999999999999999999")
	assert.True(t, apperr.IsValidation(err))
}
