package app

import (
	"context"
	"fmt"

	"github.com/upb/lead-gateway/config"
	"github.com/upb/lead-gateway/internal/auth"
	"github.com/upb/lead-gateway/internal/observability"
	"github.com/upb/lead-gateway/middleware"
	"github.com/upb/lead-gateway/services/communication"
	"github.com/upb/lead-gateway/services/leads"
	"github.com/upb/lead-gateway/services/providers"
	"go.uber.org/zap"
)

// Version is stamped at build time with -ldflags "-X ...app.Version=..."
var Version = "dev"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Providers, in registration order
	Registry     *providers.Registry
	ProviderInfo []ProviderInfo

	// Services
	Leads         *leads.Service
	Communication *communication.Service

	// AuthMiddleware is nil when AUTH_JWT_SECRET is unset
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	// Initialize provider registry
	if err := deps.initProviders(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	// Initialize email relay
	if err := deps.initCommunication(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize email relay: %w", err)
	}

	// Initialize auth
	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.Leads = leads.NewService(deps.Registry, deps.Metrics, logger)

	logger.Info("all dependencies initialized successfully",
		zap.Strings("providers", deps.Registry.Names()),
		zap.Bool("smtp", cfg.SMTPEnabled()),
		zap.Bool("auth", cfg.AuthEnabled()))
	return deps, nil
}

// initProviders builds every enabled provider and the registry over them
func (d *Dependencies) initProviders(ctx context.Context, cfg *config.Config) error {
	list, infos, err := BuildProviders(ctx, cfg.EnabledProviders(), cfg.Providers.Timeout, d.Metrics, d.Logger)
	if err != nil {
		return err
	}

	registry, err := providers.NewRegistry(list...)
	if err != nil {
		return err
	}

	if registry.Count() == 0 {
		d.Logger.Warn("no LLM providers configured")
	}

	d.Registry = registry
	d.ProviderInfo = infos
	return nil
}

func (d *Dependencies) initCommunication(cfg *config.Config) error {
	var transport communication.Transport = communication.DisabledTransport{}

	if cfg.SMTPEnabled() {
		smtp, err := communication.NewSMTPTransport(communication.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.FromEmail,
			FromName:  cfg.SMTP.FromName,
			Timeout:   cfg.SMTP.Timeout,
		})
		if err != nil {
			return err
		}
		transport = smtp
	} else {
		d.Logger.Warn("SMTP not configured, email relay disabled")
	}

	d.Communication = communication.NewService(transport, d.Metrics, d.Logger)
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	if !cfg.AuthEnabled() {
		d.Logger.Warn("AUTH_JWT_SECRET not set, lead endpoints are unauthenticated")
		return nil
	}

	validator, err := auth.NewHMACValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(&tokenValidatorAdapter{validator: validator}, d.Logger)
	return nil
}

// tokenValidatorAdapter adapts auth.HMACValidator to middleware.TokenValidator
type tokenValidatorAdapter struct {
	validator *auth.HMACValidator
}

func (a *tokenValidatorAdapter) ValidateToken(ctx context.Context, token string) (*middleware.Claims, error) {
	principal, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		Sub:    principal.Subject,
		Email:  principal.Email,
		Scopes: principal.Scopes,
		Iss:    principal.Issuer,
		Exp:    principal.ExpiresAt.Unix(),
	}, nil
}

// Ready reports whether the gateway can serve lead requests
func (d *Dependencies) Ready() bool {
	return d.Registry != nil && d.Registry.Count() > 0
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	// Sync logger; stderr/stdout sync errors are expected on some platforms
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	return nil
}
