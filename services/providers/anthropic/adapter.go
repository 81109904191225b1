package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/upb/lead-gateway/services/providers"
)

const (
	// Identity is the routing key callers send in the model header
	Identity = "claudeprovider"

	vendor = "anthropic"

	DefaultModel = "claude-3-5-haiku-latest"
)

// Config holds the Anthropic connection settings
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	HTTPClient *http.Client
}

// Adapter implements providers.Completer over the Messages API.
// Anthropic has no embeddings endpoint; pair it with another Embedder.
type Adapter struct {
	client sdk.Client
	model  string
}

// NewAdapter creates a new Anthropic adapter
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Adapter{
		client: sdk.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// New builds the claudeprovider. Pass providers.WithEmbedder to enable
// enrichment; without it every result reports embeddingGenerated=false.
func New(cfg Config, templates map[providers.TemplateName]providers.Template, opts ...providers.Option) (*providers.TemplatedProvider, error) {
	adapter, err := NewAdapter(cfg)
	if err != nil {
		return nil, err
	}
	return providers.NewTemplatedProvider(Identity, adapter, templates, opts...)
}

// Model returns the model identifier
func (a *Adapter) Model() string {
	return a.model
}

// Complete sends one user turn with the system role and joins the text blocks
func (a *Adapter) Complete(ctx context.Context, req providers.CompletionRequest) (string, error) {
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: int64(req.MaxTokens),
		System:    []sdk.TextBlockParam{{Text: req.SystemRole}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", providers.NewProviderError(vendor, "messages", "messages request failed", apiErr.StatusCode, err)
		}
		return "", providers.NewProviderError(vendor, "messages", "messages request failed", 0, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", providers.NewProviderError(vendor, "empty_response", "message has no text content", 0, nil)
	}
	return b.String(), nil
}
