package providers

import (
	"sort"
	"strings"
)

// TemplateName identifies one entry of a provider's template set
type TemplateName string

const (
	TemplateSummary  TemplateName = "summary"
	TemplateEmail    TemplateName = "email"
	TemplateWhatsApp TemplateName = "whatsapp"
)

// RequiredTemplates lists the templates every provider must be configured with
var RequiredTemplates = []TemplateName{TemplateSummary, TemplateEmail, TemplateWhatsApp}

// DefaultMaxTokens holds the completion budget used when a template omits one
var DefaultMaxTokens = map[TemplateName]int{
	TemplateSummary:  4000,
	TemplateEmail:    300,
	TemplateWhatsApp: 150,
}

const (
	ContentTypeEmail    = "personalized email"
	ContentTypeWhatsApp = "whatsapp message"

	contentSuffix = " content"
)

var contentTemplates = map[string]TemplateName{
	ContentTypeEmail:    TemplateEmail,
	ContentTypeWhatsApp: TemplateWhatsApp,
}

// NormalizeContentType folds a caller supplied content type to its key:
// lower case, dashes as spaces, collapsed whitespace, no trailing "content".
// "Personalized-Email-Content" and "personalized email" both map to
// "personalized email". The boolean reports whether the key is supported.
func NormalizeContentType(raw string) (string, bool) {
	key := strings.ToLower(raw)
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.Join(strings.Fields(key), " ")
	key = strings.TrimSuffix(key, contentSuffix)
	_, ok := contentTemplates[key]
	return key, ok
}

// ResultType is the "type" reported for content generated under key
func ResultType(key string) string {
	return key + contentSuffix
}

// SupportedContentTypes returns the recognized content type keys, sorted
func SupportedContentTypes() []string {
	keys := make([]string, 0, len(contentTemplates))
	for k := range contentTemplates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
