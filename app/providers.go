package app

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/lead-gateway/config"
	"github.com/upb/lead-gateway/services/providers"
	"github.com/upb/lead-gateway/services/providers/anthropic"
	"github.com/upb/lead-gateway/services/providers/bedrock"
	"github.com/upb/lead-gateway/services/providers/gemini"
	"github.com/upb/lead-gateway/services/providers/openai"
	"go.uber.org/zap"
)

// ProviderInfo describes a registered provider for status endpoints
type ProviderInfo struct {
	Name       string `json:"name"`
	Vendor     string `json:"vendor"`
	Model      string `json:"model"`
	Embeddings bool   `json:"embeddings"`
}

type vendorBuilder func(ctx context.Context, entry config.ProviderEntry, templates map[providers.TemplateName]providers.Template, opts []providers.Option) (*providers.TemplatedProvider, error)

var vendorBuilders = map[string]vendorBuilder{
	config.VendorOpenAI: func(_ context.Context, e config.ProviderEntry, t map[providers.TemplateName]providers.Template, opts []providers.Option) (*providers.TemplatedProvider, error) {
		return openai.New(openai.Config{
			APIKey:          e.APIKey,
			BaseURL:         e.BaseURL,
			Model:           e.Model,
			EmbeddingsModel: e.EmbeddingsModel,
		}, t, opts...)
	},
	config.VendorAnthropic: func(_ context.Context, e config.ProviderEntry, t map[providers.TemplateName]providers.Template, opts []providers.Option) (*providers.TemplatedProvider, error) {
		return anthropic.New(anthropic.Config{
			APIKey:  e.APIKey,
			BaseURL: e.BaseURL,
			Model:   e.Model,
		}, t, opts...)
	},
	config.VendorGemini: func(ctx context.Context, e config.ProviderEntry, t map[providers.TemplateName]providers.Template, opts []providers.Option) (*providers.TemplatedProvider, error) {
		return gemini.New(ctx, gemini.Config{
			APIKey:          e.APIKey,
			BaseURL:         e.BaseURL,
			Model:           e.Model,
			EmbeddingsModel: e.EmbeddingsModel,
		}, t, opts...)
	},
	config.VendorBedrock: func(ctx context.Context, e config.ProviderEntry, t map[providers.TemplateName]providers.Template, opts []providers.Option) (*providers.TemplatedProvider, error) {
		return bedrock.New(ctx, bedrock.Config{
			Region:          e.Region,
			Model:           e.Model,
			EmbeddingsModel: e.EmbeddingsModel,
		}, t, opts...)
	},
}

// BuildProviders constructs one provider per entry, in order. Entries are
// expected to be enabled and validated already.
func BuildProviders(ctx context.Context, entries []config.ProviderEntry, timeout time.Duration, recorder providers.Recorder, logger *zap.Logger) ([]providers.Provider, []ProviderInfo, error) {
	built := make([]providers.Provider, 0, len(entries))
	infos := make([]ProviderInfo, 0, len(entries))
	embedders := make(map[string]providers.Embedder, len(entries))

	for i, entry := range entries {
		build, ok := vendorBuilders[entry.VendorKey()]
		if !ok {
			return nil, nil, fmt.Errorf("unknown vendor %q", entry.Vendor)
		}

		opts := []providers.Option{
			providers.WithTimeout(timeout),
			providers.WithLogger(logger),
		}
		if recorder != nil {
			opts = append(opts, providers.WithRecorder(recorder))
		}
		if entry.Name != "" {
			opts = append(opts, providers.WithIdentity(entry.Name))
		}
		if entry.EmbeddingsFrom != "" {
			shared, ok := embedders[providers.NormalizeIdentity(entry.EmbeddingsFrom)]
			if !ok {
				return nil, nil, fmt.Errorf("provider %s: embeddingsFrom %q must name an earlier provider with embeddings",
					entry.Label(i), entry.EmbeddingsFrom)
			}
			opts = append(opts, providers.WithEmbedder(shared))
		}

		p, err := build(ctx, entry, templatesFor(entry), opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build %s provider: %w", entry.VendorKey(), err)
		}

		if emb := p.Embedder(); emb != nil {
			embedders[p.Identity()] = emb
		}
		built = append(built, p)
		infos = append(infos, ProviderInfo{
			Name:       p.Identity(),
			Vendor:     entry.VendorKey(),
			Model:      p.Model(),
			Embeddings: p.Embedder() != nil,
		})

		logger.Info("provider registered",
			zap.String("provider", p.Identity()),
			zap.String("vendor", entry.VendorKey()),
			zap.String("model", p.Model()))
	}

	return built, infos, nil
}

func templatesFor(entry config.ProviderEntry) map[providers.TemplateName]providers.Template {
	out := make(map[providers.TemplateName]providers.Template, 3)
	for name, tmpl := range map[providers.TemplateName]*config.TemplateConfig{
		providers.TemplateSummary:  entry.SummaryTemplate,
		providers.TemplateEmail:    entry.EmailTemplate,
		providers.TemplateWhatsApp: entry.WhatsAppTemplate,
	} {
		if tmpl == nil {
			continue
		}
		out[name] = providers.Template{
			SystemRole:     tmpl.SystemRole,
			PromptTemplate: tmpl.PromptTemplate,
			MaxTokens:      tmpl.MaxTokens,
		}
	}
	return out
}
