package providers

import (
	"time"

	"github.com/upb/lead-gateway/services"
)

// RequestType names the operation an envelope answers
type RequestType string

const (
	RequestTypeSummary RequestType = "summary"
	RequestTypeContent RequestType = "content"
)

// Envelope is the tagged result of a summary or content request. Exactly
// one of Value and Error is set, and OK tells which.
type Envelope struct {
	OK    bool     `json:"ok"`
	Value *Result  `json:"value,omitempty"`
	Error *Failure `json:"error,omitempty"`
}

// Result is the success branch of an Envelope
type Result struct {
	RequestType RequestType    `json:"requestType"`
	Content     string         `json:"content,omitempty"`
	LeadSummary any            `json:"leadSummary,omitempty"`
	Type        string         `json:"type,omitempty"`
	Metadata    ResultMetadata `json:"metadata"`
}

// ResultMetadata describes how a result was produced
type ResultMetadata struct {
	Source      string      `json:"source"`
	RequestType RequestType `json:"requestType"`
	Model       string      `json:"model,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`

	// EmbeddingGenerated is false when enrichment was skipped or failed.
	// The result is still usable.
	EmbeddingGenerated bool `json:"embeddingGenerated"`
}

// Failure is the error branch of an Envelope
type Failure struct {
	Kind     services.ErrorType `json:"kind"`
	Message  string             `json:"message"`
	Original any                `json:"original"`
	Metadata FailureMetadata    `json:"metadata"`
}

// FailureMetadata mirrors the diagnostic fields callers already log
type FailureMetadata struct {
	Source      string      `json:"source"`
	RequestType RequestType `json:"requestType"`
	Error       string      `json:"error"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Success wraps a result
func Success(result *Result) *Envelope {
	return &Envelope{OK: true, Value: result}
}

// Fail builds a failure envelope. original is the input that triggered it.
func Fail(source string, requestType RequestType, kind services.ErrorType, message string, original any, at time.Time) *Envelope {
	return &Envelope{
		OK: false,
		Error: &Failure{
			Kind:     kind,
			Message:  message,
			Original: original,
			Metadata: FailureMetadata{
				Source:      source,
				RequestType: requestType,
				Error:       message,
				Timestamp:   at,
			},
		},
	}
}

// Err converts a failure envelope into a domain error; it returns nil for
// a success envelope.
func (e *Envelope) Err() error {
	if e == nil {
		return services.NewDomainError(services.ErrorTypeInternal, "provider returned no envelope", nil)
	}
	if e.OK {
		return nil
	}
	if e.Error == nil {
		return services.NewDomainError(services.ErrorTypeInternal, "failure envelope without error", nil)
	}
	return services.NewDomainError(e.Error.Kind, e.Error.Message, nil).
		WithDetail("source", e.Error.Metadata.Source).
		WithDetail("request_type", string(e.Error.Metadata.RequestType))
}

// Redacted returns a copy of a failure envelope whose messages are replaced
// by message. The original payload is kept.
func (e *Envelope) Redacted(message string) *Envelope {
	if e == nil || e.OK || e.Error == nil {
		return e
	}
	failure := *e.Error
	failure.Message = message
	failure.Metadata.Error = message
	return &Envelope{OK: false, Error: &failure}
}
