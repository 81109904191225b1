package communication

import (
	"context"
	"errors"
	"strings"

	"github.com/upb/lead-gateway/internal/redact"
	"github.com/upb/lead-gateway/services"
	"go.uber.org/zap"
)

// ErrTransportNotConfigured is returned when no mail transport is set up
var ErrTransportNotConfigured = errors.New("email transport is not configured")

// Email is a plain text message to a single recipient
type Email struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=998"`
	Text    string `json:"text" validate:"required"`
}

// Transport delivers an email. Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, email Email) error
}

// EmailRecorder counts delivery outcomes
type EmailRecorder interface {
	ObserveEmail(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveEmail(string) {}

// DisabledTransport fails every send. It stands in when SMTP is not configured.
type DisabledTransport struct{}

// Send always returns ErrTransportNotConfigured
func (DisabledTransport) Send(context.Context, Email) error {
	return ErrTransportNotConfigured
}

// Service relays outbound email through a Transport
type Service struct {
	transport Transport
	recorder  EmailRecorder
	logger    *zap.Logger
}

// NewService creates a new communication service
func NewService(transport Transport, recorder EmailRecorder, logger *zap.Logger) *Service {
	if transport == nil {
		transport = DisabledTransport{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		transport: transport,
		recorder:  recorder,
		logger:    logger,
	}
}

// SendEmail sends email. Transport failures are returned as external errors
// with a generic message; the cause is logged.
func (s *Service) SendEmail(ctx context.Context, email Email) error {
	email.To = strings.TrimSpace(email.To)
	if email.To == "" {
		return services.Validation("recipient is required")
	}

	if err := s.transport.Send(ctx, email); err != nil {
		s.recorder.ObserveEmail("failed")
		s.logger.Error("failed to send email",
			zap.String("to", redact.String(email.To)),
			zap.Error(err))
		return services.NewDomainError(services.ErrorTypeExternal, "failed to send email", err)
	}

	s.recorder.ObserveEmail("sent")
	s.logger.Info("email sent", zap.String("to", redact.String(email.To)))
	return nil
}
