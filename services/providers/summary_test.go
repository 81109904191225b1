package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected any
	}{
		{
			name:     "plain object",
			text:     `{"name": "John Doe", "score": 8}`,
			expected: map[string]any{"name": "John Doe", "score": float64(8)},
		},
		{
			name: "fenced with comments and trailing commas",
			text: "```json\n{\n  // who\n  \"name\": \"John Doe\", /* title */ \"title\": \"CTO\",\n  \"tags\": [\"a\", \"b\",],\n}\n```",
			expected: map[string]any{
				"name":  "John Doe",
				"title": "CTO",
				"tags":  []any{"a", "b"},
			},
		},
		{
			name:     "comment markers inside strings are kept",
			text:     `{"site": "https://acme.io/*x*/", "note": "a, }"}`,
			expected: map[string]any{"site": "https://acme.io/*x*/", "note": "a, }"},
		},
		{
			name:     "array",
			text:     `["first", "second",]`,
			expected: []any{"first", "second"},
		},
		{
			name:     "unquoted keys fall back to yaml",
			text:     `{name: John, stage: qualified}`,
			expected: map[string]any{"name": "John", "stage": "qualified"},
		},
		{
			name:     "yaml keys that are not strings",
			text:     `{"scores": {1: "low", 2: "high"}, "weight": .nan}`,
			expected: map[string]any{"scores": map[string]any{"1": "low", "2": "high"}, "weight": "NaN"},
		},
		{
			name:     "fence followed by notes",
			text:     "```json\n{\"name\": \"John\"}\n```\nLet me know if you need more detail.",
			expected: map[string]any{"name": "John"},
		},
		{
			name:     "bracketed prose",
			text:     "[Lead Summary] John is a CTO evaluating the platform.",
			expected: "[Lead Summary] John is a CTO evaluating the platform.",
		},
		{
			name:     "prose",
			text:     "  John is a CTO evaluating our platform.  ",
			expected: "John is a CTO evaluating our platform.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSummary(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSummary_Errors(t *testing.T) {
	_, err := ParseSummary("   ")
	assert.Error(t, err)

	_, err = ParseSummary(`{"name": "John", "open": [1, 2}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary is not valid JSON")
}

func TestParseSummary_ResultIsJSONEncodable(t *testing.T) {
	got, err := ParseSummary(`{"scores": {1: "low", 2: {3: "nested"}}, "list": [{4: "x"}]}`)
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scores": {"1": "low", "2": {"3": "nested"}}, "list": [{"4": "x"}]}`, string(raw))
}
