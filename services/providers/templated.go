package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/upb/lead-gateway/internal/redact"
	"github.com/upb/lead-gateway/services"
	"go.uber.org/zap"
)

// DefaultTimeout bounds each vendor call when no timeout is configured
const DefaultTimeout = 60 * time.Second

// Recorder receives per-call measurements
type Recorder interface {
	ObserveCompletion(provider, requestType string, elapsed time.Duration, err error)
	IncEmbeddingFailure(provider string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCompletion(string, string, time.Duration, error) {}
func (nopRecorder) IncEmbeddingFailure(string)                             {}

// TemplatedProvider implements Provider on top of a vendor Completer. It
// owns template selection, prompt assembly, embedding enrichment and
// response shaping, so vendor adapters only translate wire formats.
type TemplatedProvider struct {
	identity  string
	completer Completer
	embedder  Embedder
	templates map[TemplateName]Template
	timeout   time.Duration
	logger    *zap.Logger
	recorder  Recorder
	now       func() time.Time
}

// Option configures a TemplatedProvider
type Option func(*TemplatedProvider)

// WithEmbedder enables embedding enrichment
func WithEmbedder(e Embedder) Option {
	return func(p *TemplatedProvider) { p.embedder = e }
}

// WithTimeout bounds every completion and embedding call
func WithTimeout(d time.Duration) Option {
	return func(p *TemplatedProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *TemplatedProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(p *TemplatedProvider) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithIdentity overrides the identity a vendor constructor passes in
func WithIdentity(name string) Option {
	return func(p *TemplatedProvider) {
		if strings.TrimSpace(name) != "" {
			p.identity = name
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *TemplatedProvider) { p.now = now }
}

// NewTemplatedProvider validates the template set and returns a provider.
// A missing or empty template is a construction error.
func NewTemplatedProvider(identity string, completer Completer, templates map[TemplateName]Template, opts ...Option) (*TemplatedProvider, error) {
	p := &TemplatedProvider{
		identity:  identity,
		completer: completer,
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
		recorder:  nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.identity = NormalizeIdentity(p.identity)
	if p.identity == "" {
		return nil, errors.New("provider identity cannot be empty")
	}
	if completer == nil {
		return nil, fmt.Errorf("provider %s: completer cannot be nil", p.identity)
	}

	p.templates = make(map[TemplateName]Template, len(RequiredTemplates))
	for _, name := range RequiredTemplates {
		tmpl, ok := templates[name]
		if !ok {
			return nil, fmt.Errorf("provider %s: missing %s template", p.identity, name)
		}
		if strings.TrimSpace(tmpl.SystemRole) == "" || strings.TrimSpace(tmpl.PromptTemplate) == "" {
			return nil, fmt.Errorf("provider %s: %s template needs systemRole and promptTemplate", p.identity, name)
		}
		if tmpl.MaxTokens < 0 {
			return nil, fmt.Errorf("provider %s: %s template has negative maxTokens", p.identity, name)
		}
		if tmpl.MaxTokens == 0 {
			tmpl.MaxTokens = DefaultMaxTokens[name]
		}
		p.templates[name] = tmpl
	}
	p.logger = p.logger.With(zap.String("provider", p.identity))

	return p, nil
}

// Identity returns the routing key
func (p *TemplatedProvider) Identity() string {
	return p.identity
}

// Model returns the completion model identifier
func (p *TemplatedProvider) Model() string {
	return p.completer.Model()
}

// Embedder returns the embedder used for enrichment, or nil
func (p *TemplatedProvider) Embedder() Embedder {
	return p.embedder
}

// Template returns the loaded template for name
func (p *TemplatedProvider) Template(name TemplateName) (Template, bool) {
	t, ok := p.templates[name]
	return t, ok
}

type promptPayload struct {
	Template       string `json:"template"`
	Values         Lead   `json:"values"`
	Representative any    `json:"representative,omitempty"`
}

type enrichedPayload struct {
	promptPayload
	Embedding []float32 `json:"embedding"`
}

// GetSummary summarizes a lead
func (p *TemplatedProvider) GetSummary(ctx context.Context, lead Lead) *Envelope {
	if lead == nil {
		return p.fail(RequestTypeSummary, services.ErrorTypeGenerationFailed,
			"invalid input: expected JSON object", lead)
	}

	tmpl := p.templates[TemplateSummary]
	text, embedded, err := p.generate(ctx, RequestTypeSummary, tmpl, promptPayload{
		Template: tmpl.PromptTemplate,
		Values:   lead,
	})
	if err != nil {
		p.logFailure(RequestTypeSummary, err, lead)
		return p.fail(RequestTypeSummary, services.ErrorTypeGenerationFailed, err.Error(), lead)
	}

	summary, err := ParseSummary(text)
	if err != nil {
		p.logFailure(RequestTypeSummary, err, lead)
		return p.fail(RequestTypeSummary, services.ErrorTypeSummaryParse, err.Error(), lead)
	}

	return Success(&Result{
		RequestType: RequestTypeSummary,
		LeadSummary: summary,
		Metadata:    p.metadata(RequestTypeSummary, embedded),
	})
}

// GetContent renders content for req.ContentType. Unknown content types
// fail before any vendor call is made.
func (p *TemplatedProvider) GetContent(ctx context.Context, req ContentRequest) *Envelope {
	key, ok := NormalizeContentType(req.ContentType)
	if !ok {
		return p.fail(RequestTypeContent, services.ErrorTypeUnsupportedContentType,
			fmt.Sprintf("Unsupported content type: %s", req.ContentType), req)
	}
	if req.Lead == nil {
		return p.fail(RequestTypeContent, services.ErrorTypeGenerationFailed,
			"invalid input: lead must be a JSON object", req)
	}

	tmpl := p.templates[contentTemplates[key]]
	text, embedded, err := p.generate(ctx, RequestTypeContent, tmpl, promptPayload{
		Template:       tmpl.PromptTemplate,
		Values:         req.Lead,
		Representative: req.Representative,
	})
	if err != nil {
		p.logFailure(RequestTypeContent, err, req.Lead)
		return p.fail(RequestTypeContent, services.ErrorTypeGenerationFailed, err.Error(), req)
	}

	return Success(&Result{
		RequestType: RequestTypeContent,
		Content:     text,
		Type:        ResultType(key),
		Metadata:    p.metadata(RequestTypeContent, embedded),
	})
}

func (p *TemplatedProvider) generate(ctx context.Context, requestType RequestType, tmpl Template, payload promptPayload) (string, bool, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", false, fmt.Errorf("encode prompt payload: %w", err)
	}

	vector, embedded := p.embed(ctx, string(raw))

	prompt, err := json.Marshal(enrichedPayload{promptPayload: payload, Embedding: vector})
	if err != nil {
		return "", false, fmt.Errorf("encode enriched prompt: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.completer.Complete(callCtx, CompletionRequest{
		SystemRole: tmpl.SystemRole,
		Prompt:     string(prompt),
		MaxTokens:  tmpl.MaxTokens,
	})
	p.recorder.ObserveCompletion(p.identity, string(requestType), time.Since(start), err)
	if err != nil {
		return "", embedded, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", embedded, errors.New("provider returned an empty completion")
	}
	return text, embedded, nil
}

// embed never fails the request: on error it returns an empty vector.
func (p *TemplatedProvider) embed(ctx context.Context, input string) ([]float32, bool) {
	if p.embedder == nil {
		return []float32{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	vector, err := p.embedder.Embed(callCtx, input)
	if err == nil && len(vector) == 0 {
		err = errors.New("empty embedding vector")
	}
	if err != nil {
		p.recorder.IncEmbeddingFailure(p.identity)
		p.logger.Warn("embedding generation failed, continuing without vector", zap.Error(err))
		return []float32{}, false
	}
	return vector, true
}

func (p *TemplatedProvider) metadata(requestType RequestType, embedded bool) ResultMetadata {
	return ResultMetadata{
		Source:             p.identity,
		RequestType:        requestType,
		Model:              p.completer.Model(),
		Timestamp:          p.now().UTC(),
		EmbeddingGenerated: embedded,
	}
}

func (p *TemplatedProvider) fail(requestType RequestType, kind services.ErrorType, message string, original any) *Envelope {
	return Fail(p.identity, requestType, kind, message, original, p.now().UTC())
}

func (p *TemplatedProvider) logFailure(requestType RequestType, err error, lead Lead) {
	p.logger.Error("generation failed",
		zap.String("request_type", string(requestType)),
		zap.Error(err),
		zap.Any("lead", redact.Map(lead)))
}
