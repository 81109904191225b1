package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/upb/lead-gateway/services/providers"
)

const (
	// Identity is the routing key callers send in the model header
	Identity = "bedrockprovider"

	vendor = "bedrock"

	DefaultRegion          = "us-east-1"
	DefaultModel           = "anthropic.claude-3-5-haiku-20241022-v1:0"
	DefaultEmbeddingsModel = "amazon.titan-embed-text-v2:0"

	anthropicVersion = "bedrock-2023-05-31"
)

// InvokeAPI is the part of the Bedrock runtime client the adapter needs
type InvokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Config holds the Bedrock settings. Credentials come from the default AWS chain.
type Config struct {
	Region          string
	Model           string
	EmbeddingsModel string
}

// Adapter implements providers.Completer and providers.Embedder over
// InvokeModel, for Anthropic Claude and Amazon Titan model families.
type Adapter struct {
	client          InvokeAPI
	model           string
	embeddingsModel string
}

// NewAdapter loads the AWS configuration for cfg.Region and creates the runtime client
func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for Bedrock (region: %s): %w", cfg.Region, err)
	}

	return NewAdapterWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg)
}

// NewAdapterWithClient wraps an existing runtime client
func NewAdapterWithClient(client InvokeAPI, cfg Config) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("bedrock: client cannot be nil")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingsModel == "" {
		cfg.EmbeddingsModel = DefaultEmbeddingsModel
	}
	if family(cfg.Model) == "" {
		return nil, fmt.Errorf("bedrock: unsupported model family for %s", cfg.Model)
	}

	return &Adapter{
		client:          client,
		model:           cfg.Model,
		embeddingsModel: cfg.EmbeddingsModel,
	}, nil
}

// New builds the bedrockprovider with Titan embeddings enabled
func New(ctx context.Context, cfg Config, templates map[providers.TemplateName]providers.Template, opts ...providers.Option) (*providers.TemplatedProvider, error) {
	adapter, err := NewAdapter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]providers.Option{providers.WithEmbedder(adapter)}, opts...)
	return providers.NewTemplatedProvider(Identity, adapter, templates, opts...)
}

// Model returns the completion model identifier
func (a *Adapter) Model() string {
	return a.model
}

// Complete invokes the completion model
func (a *Adapter) Complete(ctx context.Context, req providers.CompletionRequest) (string, error) {
	body, err := buildCompletionBody(a.model, req)
	if err != nil {
		return "", providers.NewProviderError(vendor, "invoke_model", "failed to build request", 0, err)
	}

	output, err := a.invoke(ctx, a.model, body)
	if err != nil {
		return "", err
	}

	text, err := parseCompletionBody(a.model, output)
	if err != nil {
		return "", providers.NewProviderError(vendor, "invoke_model", "failed to parse response", 0, err)
	}
	return text, nil
}

// Embed invokes the Titan embeddings model
func (a *Adapter) Embed(ctx context.Context, input string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{"inputText": input})
	if err != nil {
		return nil, providers.NewProviderError(vendor, "embed", "failed to build request", 0, err)
	}

	output, err := a.invoke(ctx, a.embeddingsModel, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, providers.NewProviderError(vendor, "embed", "failed to parse response", 0, err)
	}
	return resp.Embedding, nil
}

func (a *Adapter) invoke(ctx context.Context, model string, body []byte) ([]byte, error) {
	output, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, providers.NewProviderError(vendor, "invoke_model", "bedrock API error", 0, err)
	}
	return output.Body, nil
}

// family detects the model family from the model ID, ignoring
// cross-region inference profile prefixes such as "us." or "eu.".
func family(model string) string {
	id := model
	for _, prefix := range []string{"us.", "eu.", "apac.", "global."} {
		id = strings.TrimPrefix(id, prefix)
	}
	switch {
	case strings.HasPrefix(id, "anthropic."):
		return "anthropic"
	case strings.HasPrefix(id, "amazon."):
		return "amazon"
	}
	return ""
}

func buildCompletionBody(model string, req providers.CompletionRequest) ([]byte, error) {
	switch family(model) {
	case "anthropic":
		return json.Marshal(map[string]any{
			"anthropic_version": anthropicVersion,
			"max_tokens":        req.MaxTokens,
			"system":            req.SystemRole,
			"messages": []map[string]string{
				{"role": "user", "content": req.Prompt},
			},
		})
	case "amazon":
		// Titan text has no system slot
		return json.Marshal(map[string]any{
			"inputText": req.SystemRole + "\n\n" + req.Prompt,
			"textGenerationConfig": map[string]any{
				"maxTokenCount": req.MaxTokens,
			},
		})
	}
	return nil, fmt.Errorf("unsupported model family: %s", model)
}

func parseCompletionBody(model string, body []byte) (string, error) {
	switch family(model) {
	case "anthropic":
		var resp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}
		var b strings.Builder
		for _, c := range resp.Content {
			if c.Type == "" || c.Type == "text" {
				b.WriteString(c.Text)
			}
		}
		return b.String(), nil
	case "amazon":
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if len(resp.Results) == 0 {
			return "", nil
		}
		return resp.Results[0].OutputText, nil
	}
	return "", fmt.Errorf("unsupported model family: %s", model)
}
