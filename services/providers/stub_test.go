package providers

import (
	"context"
	"errors"
	"sync"
	"time"
)

type stubCompleter struct {
	mu       sync.Mutex
	model    string
	response string
	err      error
	calls    []CompletionRequest
	wait     bool
}

func (s *stubCompleter) Model() string { return s.model }

func (s *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.response, s.err
}

func (s *stubCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	inputs []string
}

func (s *stubEmbedder) Embed(_ context.Context, input string) ([]float32, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()
	return s.vector, s.err
}

func (s *stubEmbedder) inputCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

type stubRecorder struct {
	completions       int
	embeddingFailures int
}

func (r *stubRecorder) ObserveCompletion(string, string, time.Duration, error) { r.completions++ }
func (r *stubRecorder) IncEmbeddingFailure(string)                             { r.embeddingFailures++ }

var errVendorDown = errors.New("vendor unavailable")

func testTemplates() map[TemplateName]Template {
	return map[TemplateName]Template{
		TemplateSummary:  {SystemRole: "You summarize leads.", PromptTemplate: "Summarize {values}"},
		TemplateEmail:    {SystemRole: "You write emails.", PromptTemplate: "Write an email for {values}"},
		TemplateWhatsApp: {SystemRole: "You write chats.", PromptTemplate: "Write a whatsapp message for {values}"},
	}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
