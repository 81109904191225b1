package providers

import (
	"context"
	"fmt"
)

// Provider is the contract every lead content backend satisfies.
//
// GetSummary and GetContent never return a bare error: every failure is
// reported as a failure envelope that carries the original input.
type Provider interface {
	// Identity returns the lower-case routing key (e.g., "chatgptprovider")
	Identity() string

	// GetSummary produces a summary of an arbitrary lead record
	GetSummary(ctx context.Context, lead Lead) *Envelope

	// GetContent renders outreach content for the requested content type
	GetContent(ctx context.Context, req ContentRequest) *Envelope
}

// Completer is the chat completion port a vendor adapter implements.
// Implementations must be safe for concurrent use.
type Completer interface {
	// Model returns the vendor model identifier used for completions
	Model() string

	// Complete submits a system/user prompt pair and returns the primary text
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder is the embeddings port. It is optional: a provider without an
// embedder runs with embeddingGenerated=false.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
}

// Lead is a loosely structured lead record. The core passes it through
// opaquely and never mutates it.
type Lead map[string]any

// ContentRequest asks a provider for outreach content
type ContentRequest struct {
	// ContentType selects the prompt template (e.g., "personalized email")
	ContentType string `json:"content_type" validate:"required"`

	// Lead is the record the content is written for
	Lead Lead `json:"lead" validate:"required"`

	// Representative describes the sender, when the caller supplies one
	Representative any `json:"representative,omitempty"`
}

// Template pairs a role instruction with a prompt skeleton.
type Template struct {
	SystemRole     string `json:"systemRole"`
	PromptTemplate string `json:"promptTemplate"`

	// MaxTokens is fixed per template and never taken from the caller
	MaxTokens int `json:"maxTokens,omitempty"`
}

// CompletionRequest is what a Completer receives
type CompletionRequest struct {
	SystemRole string
	Prompt     string
	MaxTokens  int
}

// ProviderError represents an error returned by a vendor API
type ProviderError struct {
	// Vendor that generated the error (e.g., "openai", "bedrock")
	Vendor string

	// Code is a short machine-readable failure code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the vendor HTTP status code (if known)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Vendor, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(vendor, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Vendor:     vendor,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
