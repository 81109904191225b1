package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation             ErrorType = "validation"
	ErrorTypeProviderNotFound       ErrorType = "provider_not_found"
	ErrorTypeUnsupportedContentType ErrorType = "unsupported_content_type"
	ErrorTypeGenerationFailed       ErrorType = "generation_failed"
	ErrorTypeSummaryParse           ErrorType = "summary_parse_error"
	ErrorTypeEmbeddingFailed        ErrorType = "embedding_failed"
	ErrorTypeUnauthorized           ErrorType = "unauthorized"
	ErrorTypeExternal               ErrorType = "external"
	ErrorTypeInternal               ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Two domain errors match when their types match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables. They are sentinels for errors.Is; wrap them with
// NewDomainError when a message specific to the call is needed.
var (
	ErrInvalidInput         = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrMissingModelHeader   = NewDomainError(ErrorTypeValidation, `the "model" header is required`, nil)
	ErrEmptyBody            = NewDomainError(ErrorTypeValidation, "request body cannot be empty", nil)
	ErrProviderNotFound     = NewDomainError(ErrorTypeProviderNotFound, "provider not found", nil)
	ErrUnsupportedContent   = NewDomainError(ErrorTypeUnsupportedContentType, "unsupported content type", nil)
	ErrGenerationFailed     = NewDomainError(ErrorTypeGenerationFailed, "generation failed", nil)
	ErrSummaryParse         = NewDomainError(ErrorTypeSummaryParse, "summary could not be parsed", nil)
	ErrEmbeddingFailed      = NewDomainError(ErrorTypeEmbeddingFailed, "embedding generation failed", nil)
	ErrUnauthorized         = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrEmailDeliveryFailed  = NewDomainError(ErrorTypeExternal, "failed to send email", nil)
	ErrInternal             = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrSummaryDispatch      = NewDomainError(ErrorTypeInternal, "summary generation failed", nil)
	ErrContentDispatch      = NewDomainError(ErrorTypeInternal, "content generation failed", nil)
)

func hasType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsProviderNotFoundError checks if an error is a provider lookup failure
func IsProviderNotFoundError(err error) bool {
	return hasType(err, ErrorTypeProviderNotFound)
}

// IsUnsupportedContentTypeError checks if an error names an unknown content type
func IsUnsupportedContentTypeError(err error) bool {
	return hasType(err, ErrorTypeUnsupportedContentType)
}

// IsGenerationError checks if an error came from a failed provider call,
// including an unparseable summary.
func IsGenerationError(err error) bool {
	return hasType(err, ErrorTypeGenerationFailed) || hasType(err, ErrorTypeSummaryParse)
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return hasType(err, ErrorTypeUnauthorized)
}

// IsExternalError checks if an error is an external transport error
func IsExternalError(err error) bool {
	return hasType(err, ErrorTypeExternal)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapExternal wraps an error as an external transport error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}

// Validation builds a validation error with a caller-facing message
func Validation(message string) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, nil)
}
