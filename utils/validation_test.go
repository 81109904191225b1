package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEmail struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=20"`
	Text    string `json:"text" validate:"required"`
}

type testContent struct {
	ContentType string         `json:"content_type" validate:"required"`
	Lead        map[string]any `json:"lead" validate:"required"`
	Internal    string         `json:"-" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := testEmail{To: "john@example.com", Subject: "Hello", Text: "Hi John"}

		err := ValidateStruct(&s)
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		s := testEmail{To: "john@example.com", Text: "Hi"}

		err := ValidateStruct(&s)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Equal(t, "subject is required", fields["subject"])
	})

	t.Run("invalid email", func(t *testing.T) {
		s := testEmail{To: "invalid-email", Subject: "Hello", Text: "Hi"}

		err := ValidateStruct(&s)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "to must be a valid email", GetValidationFields(err)["to"])
	})

	t.Run("too long", func(t *testing.T) {
		s := testEmail{To: "john@example.com", Subject: "a subject that is far too long", Text: "Hi"}

		err := ValidateStruct(&s)
		assert.Equal(t, "subject must be at most 20", GetValidationFields(err)["subject"])
	})

	t.Run("nil map and json names", func(t *testing.T) {
		err := ValidateStruct(&testContent{})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "content_type")
		assert.Contains(t, fields, "lead")
		assert.Contains(t, fields, "Internal", "fields without a JSON name keep the Go name")
	})

	t.Run("empty map is present", func(t *testing.T) {
		err := ValidateStruct(&testContent{ContentType: "x", Lead: map[string]any{}, Internal: "y"})
		assert.NoError(t, err)
	})
}

func TestNewValidationError(t *testing.T) {
	err := ValidateStruct(&testEmail{To: "bad"})
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)

	assert.Equal(t, "Validation failed", validationErr.Message)
	assert.Len(t, validationErr.Fields, 3)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "Test validation error",
		Fields: map[string]string{
			"field1": "error1",
		},
	}

	assert.Equal(t, "Test validation error", err.Error())
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(&ValidationError{Message: "test"}))
	assert.False(t, IsValidationError(assert.AnError))
}

func TestGetValidationFields(t *testing.T) {
	t.Run("gets fields from validation error", func(t *testing.T) {
		fields := map[string]string{
			"field1": "error1",
			"field2": "error2",
		}
		err := &ValidationError{
			Message: "test",
			Fields:  fields,
		}

		assert.Equal(t, fields, GetValidationFields(err))
	})

	t.Run("returns nil for non-validation error", func(t *testing.T) {
		assert.Nil(t, GetValidationFields(assert.AnError))
	})
}
