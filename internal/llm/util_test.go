package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_Fences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "json label",
			input:    "json: {\"fullName\": \"Ada\"}",
			expected: `{"fullName": "Ada"}`,
		},
		{
			name:     "bare json line",
			input:    "json\n{\"fullName\": \"Ada\"}",
			expected: `{"fullName": "Ada"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestSanitize_PreambleAndTrailer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before object",
			input:    "As requested, here is the JSON:\n{\"fullName\": \"Ada\"}",
			expected: `{"fullName": "Ada"}`,
		},
		{
			name:     "conversational preamble",
			input:    "I read the resume carefully. Here's the structured output:\n\n{\"skills\": [\"Go\"]}",
			expected: `{"skills": ["Go"]}`,
		},
		{
			name:     "here is without colon",
			input:    "Here is the resume {\"summary\": \"\"}",
			expected: `{"summary": ""}`,
		},
		{
			name:     "preamble before array",
			input:    "Here are the items:\n[\"item1\", \"item2\"]",
			expected: `["item1", "item2"]`,
		},
		{
			name:     "trailing remark after object",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
		},
		{
			name:     "fence plus preamble plus trailer",
			input:    "Sure! Here it is:\n```json\n{\"a\": 1}\n```\nI hope this helps.",
			expected: `{"a": 1}`,
		},
		{
			name:     "escaped quotes survive",
			input:    "Result: {\"message\": \"He said \\\"hello\\\"\"}",
			expected: `{"message": "He said \"hello\""}`,
		},
		{
			name:     "braces inside strings",
			input:    "{\"template\": \"Hello {name}!\"} trailing",
			expected: `{"template": "Hello {name}!"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestSanitize_NoMatchReturnsTrimmed(t *testing.T) {
	assert.Equal(t, "not json at all", Sanitize("  not json at all \n"))
	assert.Equal(t, `{"unterminated": [1, 2`, Sanitize(`{"unterminated": [1, 2`))
	assert.Equal(t, "", Sanitize("   "))
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"```json\n```json\n{\"a\": 1}\n```\n```",
		"Here is the JSON: ```json\n{\"a\": [1, 2]}\n``` Let me know!",
		"json: json: {\"a\": 1}",
		"{\"a\": 1} {\"b\": 2}",
		"Output:\n[{\"id\": 1}, {\"id\": 2}]\nNote: ids are sequential",
		"{\"broken\": ",
		"```\n\n```",
		"Certainly! {\"x\": \"}\"}",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestValueEnd(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{`{"a": 1}`, 8},
		{`[1, [2]] tail`, 8},
		{`{"s": "]"}`, 10},
		{`{"open": 1`, -1},
		{`text`, -1},
		{``, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, valueEnd(tt.input), tt.input)
	}
}
