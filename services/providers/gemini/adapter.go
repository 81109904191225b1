package gemini

import (
	"context"
	"errors"
	"net/http"

	"github.com/upb/lead-gateway/services/providers"
	"google.golang.org/genai"
)

const (
	// Identity is the routing key callers send in the model header
	Identity = "geminiprovider"

	vendor = "gemini"

	DefaultModel           = "gemini-2.0-flash"
	DefaultEmbeddingsModel = "text-embedding-004"
)

// Config holds the Gemini API settings
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	EmbeddingsModel string

	HTTPClient *http.Client
}

// Adapter implements providers.Completer and providers.Embedder over the
// Gemini API.
type Adapter struct {
	client          *genai.Client
	model           string
	embeddingsModel string
}

// NewAdapter creates a Gemini adapter. The client is created eagerly so a
// bad key fails at startup.
func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingsModel == "" {
		cfg.EmbeddingsModel = DefaultEmbeddingsModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, providers.NewProviderError(vendor, "client", "failed to create client", 0, err)
	}

	return &Adapter{
		client:          client,
		model:           cfg.Model,
		embeddingsModel: cfg.EmbeddingsModel,
	}, nil
}

// New builds the geminiprovider with Gemini embeddings enabled
func New(ctx context.Context, cfg Config, templates map[providers.TemplateName]providers.Template, opts ...providers.Option) (*providers.TemplatedProvider, error) {
	adapter, err := NewAdapter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]providers.Option{providers.WithEmbedder(adapter)}, opts...)
	return providers.NewTemplatedProvider(Identity, adapter, templates, opts...)
}

// Model returns the generation model identifier
func (a *Adapter) Model() string {
	return a.model
}

// Complete generates content with the system role as system instruction
func (a *Adapter) Complete(ctx context.Context, req providers.CompletionRequest) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemRole}},
		},
		MaxOutputTokens: int32(req.MaxTokens),
	})
	if err != nil {
		return "", wrapError("generate_content", err)
	}

	text := resp.Text()
	if text == "" {
		return "", providers.NewProviderError(vendor, "empty_response", "response has no text candidates", 0, nil)
	}
	return text, nil
}

// Embed creates an embedding vector for input
func (a *Adapter) Embed(ctx context.Context, input string) ([]float32, error) {
	resp, err := a.client.Models.EmbedContent(ctx, a.embeddingsModel, genai.Text(input), nil)
	if err != nil {
		return nil, wrapError("embed_content", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, providers.NewProviderError(vendor, "empty_response", "embedding returned no values", 0, nil)
	}
	return resp.Embeddings[0].Values, nil
}

func wrapError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.NewProviderError(vendor, op, apiErr.Message, apiErr.Code, err)
	}
	return providers.NewProviderError(vendor, op, op+" request failed", 0, err)
}
