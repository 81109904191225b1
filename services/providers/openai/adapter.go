package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/upb/lead-gateway/services/providers"
)

const (
	// Identity is the routing key callers send in the model header
	Identity = "chatgptprovider"

	vendor = "openai"

	DefaultModel           = "gpt-4o-mini"
	DefaultEmbeddingsModel = "text-embedding-3-small"
)

// Config holds the OpenAI connection settings
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	EmbeddingsModel string

	// HTTPClient overrides the transport (tests)
	HTTPClient *http.Client
}

// Adapter implements providers.Completer and providers.Embedder for OpenAI
type Adapter struct {
	client          *goopenai.Client
	model           string
	embeddingsModel string
}

// NewAdapter creates a new OpenAI adapter
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingsModel == "" {
		cfg.EmbeddingsModel = DefaultEmbeddingsModel
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &Adapter{
		client:          goopenai.NewClientWithConfig(clientCfg),
		model:           cfg.Model,
		embeddingsModel: cfg.EmbeddingsModel,
	}, nil
}

// New builds the chatgptprovider: an OpenAI adapter behind the shared
// templated provider, with OpenAI embeddings enabled.
func New(cfg Config, templates map[providers.TemplateName]providers.Template, opts ...providers.Option) (*providers.TemplatedProvider, error) {
	adapter, err := NewAdapter(cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]providers.Option{providers.WithEmbedder(adapter)}, opts...)
	return providers.NewTemplatedProvider(Identity, adapter, templates, opts...)
}

// Model returns the chat model identifier
func (a *Adapter) Model() string {
	return a.model
}

// Complete performs a chat completion request
func (a *Adapter) Complete(ctx context.Context, req providers.CompletionRequest) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: a.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemRole},
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", wrapError("chat_completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", providers.NewProviderError(vendor, "empty_response", "completion returned no choices", 0, nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed creates an embedding vector for input
func (a *Adapter) Embed(ctx context.Context, input string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: []string{input},
		Model: goopenai.EmbeddingModel(a.embeddingsModel),
	})
	if err != nil {
		return nil, wrapError("embedding", err)
	}

	if len(resp.Data) == 0 {
		return nil, providers.NewProviderError(vendor, "empty_response", "embedding returned no data", 0, nil)
	}

	return resp.Data[0].Embedding, nil
}

// wrapError keeps the vendor status code when the SDK exposes one
func wrapError(op string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return providers.NewProviderError(vendor, op, apiErr.Message, apiErr.HTTPStatusCode, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return providers.NewProviderError(vendor, op, "request failed", reqErr.HTTPStatusCode, err)
	}

	return providers.NewProviderError(vendor, op, fmt.Sprintf("%s request failed", op), 0, err)
}
