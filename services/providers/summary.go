package providers

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

const codeFence = "```"

// ParseSummary interprets completion text as a lead summary.
//
// Text shaped like JSON (starting with { and ending with }, or [ and ],
// optionally inside a markdown code fence) is decoded permissively:
// comments and trailing commas are tolerated, and a YAML decode is tried
// before giving up. Any other text is prose and is returned trimmed, so
// "[Lead Summary] John is a CTO." stays a string summary.
func ParseSummary(text string) (any, error) {
	body := strings.TrimSpace(stripCodeFence(text))
	if body == "" {
		return nil, fmt.Errorf("summary is empty")
	}
	if !looksStructured(body) {
		return body, nil
	}

	standard, jsonErr := hujson.Standardize([]byte(body))
	if jsonErr == nil {
		var out any
		if jsonErr = json.Unmarshal(standard, &out); jsonErr == nil {
			return out, nil
		}
	}

	var fallback any
	if err := yaml.Unmarshal([]byte(body), &fallback); err == nil {
		if v, ok := normalizeYAML(fallback); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("summary is not valid JSON: %w", jsonErr)
}

func looksStructured(body string) bool {
	first, last := body[0], body[len(body)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}

// normalizeYAML converts a decoded YAML document into JSON-encodable
// values. Map keys of any scalar type become strings. Only objects and
// arrays are accepted at the top level.
func normalizeYAML(v any) (any, bool) {
	switch v.(type) {
	case map[string]any, map[any]any, []any:
		return jsonValue(v), true
	}
	return nil, false
}

func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = jsonValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonValue(item)
		}
		return out
	case float64:
		// .nan and .inf have no JSON form
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Sprint(t)
		}
		return t
	default:
		return v
	}
}

// stripCodeFence returns the body of the first fenced block, dropping the
// language tag and any notes after the closing fence.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, codeFence) {
		return t
	}
	i := strings.IndexByte(t, '\n')
	if i < 0 {
		return ""
	}
	t = t[i+1:]
	if end := strings.Index(t, codeFence); end >= 0 {
		t = t[:end]
	}
	return strings.TrimSpace(t)
}
