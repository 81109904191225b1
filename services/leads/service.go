package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/upb/lead-gateway/services"
	"github.com/upb/lead-gateway/services/providers"
	"go.uber.org/zap"
)

const (
	OperationSummary = "summary"
	OperationContent = "content"

	outcomeSuccess = "success"
	outcomePanic   = "panic"
)

// RequestRecorder counts dispatched requests by outcome
type RequestRecorder interface {
	ObserveRequest(provider, operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, string) {}

// Service resolves providers by name and dispatches lead operations to them
type Service struct {
	registry *providers.Registry
	recorder RequestRecorder
	logger   *zap.Logger
}

// NewService creates a new dispatch service
func NewService(registry *providers.Registry, recorder RequestRecorder, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		recorder: recorder,
		logger:   logger,
	}
}

// Providers returns the registered providers in order
func (s *Service) Providers() []providers.Provider {
	return s.registry.All()
}

// ResolveProvider finds the provider whose identity matches name, ignoring
// case and surrounding whitespace.
func (s *Service) ResolveProvider(name string) (providers.Provider, error) {
	if strings.TrimSpace(name) == "" {
		return nil, services.ErrMissingModelHeader
	}

	p, ok := s.registry.Lookup(name)
	if !ok {
		normalized := providers.NormalizeIdentity(name)
		return nil, services.NewDomainError(
			services.ErrorTypeProviderNotFound,
			fmt.Sprintf("provider %q is not registered", normalized),
			providers.ErrProviderNotFound,
		).WithDetail("model", normalized).WithDetail("available", s.registry.Names())
	}
	return p, nil
}

// GetSummary dispatches a summary request. Provider failures come back in
// the envelope; the error is reserved for lookup failures and for a
// provider that broke its contract.
func (s *Service) GetSummary(ctx context.Context, providerName string, lead providers.Lead) (env *providers.Envelope, err error) {
	p, err := s.ResolveProvider(providerName)
	if err != nil {
		return nil, err
	}

	defer s.recoverDispatch(p.Identity(), OperationSummary, "summary generation failed", &env, &err)

	env = p.GetSummary(ctx, lead)
	if env == nil {
		return nil, s.contractError(p.Identity(), OperationSummary, "summary generation failed")
	}

	s.record(p.Identity(), OperationSummary, env)
	return env, nil
}

// GetContent dispatches a content request. An unsupported content type is
// returned as a failure envelope of kind unsupported_content_type so the
// caller can tell it apart from a generation failure.
func (s *Service) GetContent(ctx context.Context, providerName string, req providers.ContentRequest) (env *providers.Envelope, err error) {
	p, err := s.ResolveProvider(providerName)
	if err != nil {
		return nil, err
	}

	defer s.recoverDispatch(p.Identity(), OperationContent, "content generation failed", &env, &err)

	env = p.GetContent(ctx, req)
	if env == nil {
		return nil, s.contractError(p.Identity(), OperationContent, "content generation failed")
	}

	s.record(p.Identity(), OperationContent, env)
	return env, nil
}

func (s *Service) record(provider, operation string, env *providers.Envelope) {
	outcome := outcomeSuccess
	if !env.OK && env.Error != nil {
		outcome = string(env.Error.Kind)
		s.logger.Warn("provider returned failure envelope",
			zap.String("provider", provider),
			zap.String("request_type", operation),
			zap.String("kind", outcome),
			zap.String("error", env.Error.Message))
	}
	s.recorder.ObserveRequest(provider, operation, outcome)
}

func (s *Service) contractError(provider, operation, message string) error {
	s.recorder.ObserveRequest(provider, operation, string(services.ErrorTypeInternal))
	return services.NewDomainError(services.ErrorTypeInternal, message, errors.New("provider returned no envelope"))
}

// recoverDispatch turns a provider panic into an internal error. The panic
// value is logged, never returned to the caller.
func (s *Service) recoverDispatch(provider, operation, message string, env **providers.Envelope, err *error) {
	r := recover()
	if r == nil {
		return
	}
	s.logger.Error("provider panicked",
		zap.String("provider", provider),
		zap.String("request_type", operation),
		zap.Any("panic", r),
		zap.Stack("stack"))
	s.recorder.ObserveRequest(provider, operation, outcomePanic)

	*env = nil
	*err = services.NewDomainError(services.ErrorTypeInternal, message, fmt.Errorf("provider panic: %v", r))
}
