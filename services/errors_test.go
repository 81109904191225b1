package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeProviderNotFound, "provider not registered", baseErr)

	assert.Equal(t, ErrorTypeProviderNotFound, domainErr.Type)
	assert.Equal(t, "provider not registered", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeGenerationFailed,
				Message: "completion failed",
				Err:     errors.New("vendor down"),
			},
			wantMsg: "generation_failed: completion failed (vendor down)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
	assert.True(t, errors.Is(domainErr, baseErr))
}

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, `the "model" header is required`, nil)

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrMissingModelHeader))
	assert.False(t, errors.Is(err, ErrProviderNotFound))
	assert.False(t, errors.Is(err, errors.New("validation")))
}

func TestDomainError_WithDetail(t *testing.T) {
	err := &DomainError{Type: ErrorTypeProviderNotFound, Message: "missing"}
	err.WithDetail("model", "nope").WithDetail("available", []string{"chatgptprovider"})

	require.Len(t, err.Details, 2)
	assert.Equal(t, "nope", err.Details["model"])
	assert.Equal(t, []string{"chatgptprovider"}, GetErrorDetails(err)["available"])
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"validation", Validation("bad body"), IsValidationError, true},
		{"provider not found", ErrProviderNotFound, IsProviderNotFoundError, true},
		{"unsupported content type", ErrUnsupportedContent, IsUnsupportedContentTypeError, true},
		{"generation failed", ErrGenerationFailed, IsGenerationError, true},
		{"summary parse counts as generation", ErrSummaryParse, IsGenerationError, true},
		{"unauthorized", ErrUnauthorized, IsUnauthorizedError, true},
		{"external", WrapExternal("smtp down", errors.New("dial")), IsExternalError, true},
		{"internal", WrapInternal("boom", nil), IsInternalError, true},
		{"wrapped validation", fmt.Errorf("handler: %w", ErrEmptyBody), IsValidationError, true},
		{"plain error", errors.New("plain"), IsValidationError, false},
		{"nil", nil, IsInternalError, false},
		{"internal is not external", ErrInternal, IsExternalError, false},
		{"embedding is not generation", ErrEmbeddingFailed, IsGenerationError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeExternal, GetErrorType(ErrEmailDeliveryFailed))
	assert.Equal(t, ErrorTypeInternal, GetErrorType(fmt.Errorf("x: %w", ErrSummaryDispatch)))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}
