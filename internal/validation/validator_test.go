package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContact(t *testing.T) {
	result := ValidateContact("Anna", "Li", "555-1111", "a@x.com")
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
}

func TestValidateContactMissingFields(t *testing.T) {
	result := ValidateContact("Anna", "  ", "", "a@x.com")
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "lastName", result.Errors[0].Field)
	assert.Equal(t, "phone", result.Errors[1].Field)
	assert.Equal(t, ErrorFieldRequired, result.Errors[0].Code)

	err := result.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidContact))

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"lastName": "Last name is required",
		"phone":    "Phone is required",
	}, verr.Fields())
	assert.Contains(t, err.Error(), "Last name is required")
}

func TestValidateFilterField(t *testing.T) {
	assert.True(t, ValidateFilterField("email").IsValid)

	result := ValidateFilterField("id")
	assert.False(t, result.IsValid)
	assert.Equal(t, ErrorUnknownField, result.Errors[0].Code)
}
