package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n\t\n  ", ""},
		{"line endings", "Line 1\r\nLine 2\rLine 3\nLine 4", "Line 1\nLine 2\nLine 3\nLine 4"},
		{"collapse spaces", "Senior    Engineer\t\tat   Acme", "Senior Engineer at Acme"},
		{"blank lines", "Experience\n\n\n\n\nEducation", "Experience\n\nEducation"},
		{"headings lose indent", "   ## Skills", "## Skills"},
		{"bullets keep indent", "- Go\n  - concurrency", "- Go\n  - concurrency"},
		{"control characters", "Ada\x00 Love\x07lace\x1b", "Ada Lovelace"},
		{"unicode bullets", "• Led a team", "• Led a team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Jane   Doe\n\n\n\nGo   developer\r\n- shipped   things"
	first := CleanText(input)
	assert.Equal(t, first, CleanText(input))
	assert.Equal(t, first, CleanText(first))
}
