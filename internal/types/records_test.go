package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceDocumentMapping_Name(t *testing.T) {
	assert.Equal(t, "LinkedIn Export", SourceDocumentMapping{SourceID: "src-1", DisplayName: "LinkedIn Export"}.Name())
	assert.Equal(t, "src-1", SourceDocumentMapping{SourceID: "src-1"}.Name())
}

func TestExtractionRecord_NullStructureError(t *testing.T) {
	record := ExtractionRecord{
		StructuredResult: `{"fullName":"Ada"}`,
		IsValidStructure: true,
		ProcessedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SourceDocument:   "src-1",
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	value, present := raw["structureError"]
	assert.True(t, present, "structureError must always be present")
	assert.Nil(t, value)
	assert.NotContains(t, raw, "repairPrompt")
}

func TestProgressUpdate_Entry(t *testing.T) {
	now := time.Now()
	update := ProgressUpdate{SourceID: "a", StatusText: "Failed", Completed: true, Error: "boom", LastProcessed: &now}
	entry := update.Entry()
	assert.Equal(t, "Failed", entry.StatusText)
	assert.True(t, entry.Completed)
	assert.Equal(t, "boom", entry.Error)
	assert.Equal(t, &now, entry.LastProcessed)
}

func TestGPA_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected GPA
		wantErr  bool
	}{
		{name: "string", input: `{"gpa": "3.8/4.0"}`, expected: "3.8/4.0"},
		{name: "number", input: `{"gpa": 3.8}`, expected: "3.8"},
		{name: "integer", input: `{"gpa": 4}`, expected: "4"},
		{name: "null", input: `{"gpa": null}`, expected: ""},
		{name: "empty string", input: `{"gpa": ""}`, expected: ""},
		{name: "object", input: `{"gpa": {"value": 3.8}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Education
			err := json.Unmarshal([]byte(tt.input), &e)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.GPA)
		})
	}
}
