package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vendors understood by the provider builder table
const (
	VendorOpenAI    = "openai"
	VendorAnthropic = "anthropic"
	VendorGemini    = "gemini"
	VendorBedrock   = "bedrock"
)

var defaultAPIKeyEnv = map[string]string{
	VendorOpenAI:    "OPENAI_API_KEY",
	VendorAnthropic: "ANTHROPIC_API_KEY",
	VendorGemini:    "GEMINI_API_KEY",
}

// ProviderFile is the on-disk provider configuration. JSON files are
// accepted too, JSON being a subset of YAML.
type ProviderFile struct {
	Providers []ProviderEntry `yaml:"providers"`
}

// ProviderEntry configures one provider instance
type ProviderEntry struct {
	// Name overrides the vendor's default identity (e.g., "chatgptprovider")
	Name   string `yaml:"name"`
	Vendor string `yaml:"vendor"`

	// Enabled defaults to true when omitted
	Enabled *bool `yaml:"enabled"`

	// APIKey is read from the file; APIKeyEnv names an environment variable
	// that takes precedence over it.
	APIKey    string `yaml:"apiKey"`
	APIKeyEnv string `yaml:"apiKeyEnv"`

	Model           string `yaml:"model"`
	EmbeddingsModel string `yaml:"embeddingsModel"`

	// EmbeddingsFrom borrows the embedder of an earlier provider. Used by
	// vendors without an embeddings endpoint.
	EmbeddingsFrom string `yaml:"embeddingsFrom"`

	Region  string `yaml:"region"`
	BaseURL string `yaml:"baseURL"`

	SummaryTemplate  *TemplateConfig `yaml:"summaryTemplate"`
	EmailTemplate    *TemplateConfig `yaml:"emailTemplate"`
	WhatsAppTemplate *TemplateConfig `yaml:"whatsappTemplate"`
}

// TemplateConfig is one prompt template
type TemplateConfig struct {
	SystemRole     string `yaml:"systemRole"`
	PromptTemplate string `yaml:"promptTemplate"`
	MaxTokens      int    `yaml:"maxTokens"`
}

// IsEnabled reports whether the entry should be built
func (e ProviderEntry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// VendorKey returns the normalized vendor name
func (e ProviderEntry) VendorKey() string {
	return strings.ToLower(strings.TrimSpace(e.Vendor))
}

// Label names the entry in error messages: its name, or its position
// and vendor when the vendor's default identity is used.
func (e ProviderEntry) Label(position int) string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("#%d (%s)", position, e.Vendor)
}

// LoadProviderFile reads and decodes the provider file at path, then
// resolves API keys from the environment.
func LoadProviderFile(path string) ([]ProviderEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open provider config %s: %w", path, err)
	}
	defer f.Close()

	entries, err := DecodeProviders(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse provider config %s: %w", path, err)
	}
	return entries, nil
}

// DecodeProviders decodes a provider file and resolves API keys from the environment
func DecodeProviders(r io.Reader) ([]ProviderEntry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file ProviderFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	for i := range file.Providers {
		e := &file.Providers[i]
		envName := e.APIKeyEnv
		if envName == "" {
			envName = defaultAPIKeyEnv[e.VendorKey()]
		}
		if envName != "" {
			if v := os.Getenv(envName); v != "" {
				e.APIKey = v
			}
		}
		if e.VendorKey() == VendorBedrock && e.Region == "" {
			e.Region = getEnv("BEDROCK_REGION", os.Getenv("AWS_REGION"))
		}
	}

	return file.Providers, nil
}

// ValidateProviders checks every enabled entry: known vendor, complete
// templates, credentials present, no duplicate names.
func ValidateProviders(entries []ProviderEntry) error {
	seen := make(map[string]int)
	for i, e := range entries {
		if !e.IsEnabled() {
			continue
		}

		label := e.Label(i)

		switch e.VendorKey() {
		case VendorOpenAI, VendorAnthropic, VendorGemini:
			if e.APIKey == "" {
				envName := e.APIKeyEnv
				if envName == "" {
					envName = defaultAPIKeyEnv[e.VendorKey()]
				}
				return fmt.Errorf("provider %s: missing API key (set %s)", label, envName)
			}
		case VendorBedrock:
			if e.Region == "" {
				return fmt.Errorf("provider %s: missing region (set region, BEDROCK_REGION or AWS_REGION)", label)
			}
		default:
			return fmt.Errorf("provider %s: unknown vendor %q", label, e.Vendor)
		}

		for name, tmpl := range map[string]*TemplateConfig{
			"summaryTemplate":  e.SummaryTemplate,
			"emailTemplate":    e.EmailTemplate,
			"whatsappTemplate": e.WhatsAppTemplate,
		} {
			if tmpl == nil {
				return fmt.Errorf("provider %s: missing %s", label, name)
			}
			if strings.TrimSpace(tmpl.SystemRole) == "" || strings.TrimSpace(tmpl.PromptTemplate) == "" {
				return fmt.Errorf("provider %s: %s needs systemRole and promptTemplate", label, name)
			}
			if tmpl.MaxTokens < 0 {
				return fmt.Errorf("provider %s: %s has negative maxTokens", label, name)
			}
		}

		if e.Name != "" {
			key := strings.ToLower(strings.TrimSpace(e.Name))
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("provider %s: duplicate name, already used by entry #%d", label, prev)
			}
			seen[key] = i
		}
	}
	return nil
}
