package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-intake/internal/extraction"
	"github.com/jonathan/resume-intake/internal/pipeline"
	"github.com/jonathan/resume-intake/internal/types"
)

const resumeJSON = `{"fullName": "Ada Lovelace", "contact": {"email": "ada@example.com", "phone": "", "location": "London"},
"summary": "", "workExperience": [{"jobTitle": "Analyst", "company": "Engine Co", "startDate": "1842", "endDate": "1843", "responsibilities": []}],
"education": [{"degree": "Tutoring", "institution": "Home", "startDate": "", "endDate": "", "gpa": ""}], "skills": ["poetry", "math"]}`

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	at := time.Date(2026, 1, 1, 10, 11, 12, 0, time.UTC)

	mappings := []types.SourceDocumentMapping{
		{SourceID: "a", DisplayName: "Resume A"},
		{SourceID: "b", DisplayName: "Resume B"},
		{SourceID: "c"},
	}
	state := types.ProgressState{
		"a": {StatusText: "Extraction complete", Completed: true, LastProcessed: &at},
		"b": {StatusText: "Failed: no text content found", Completed: true, Error: "no text content found"},
	}

	p.PrintProgress(mappings, state)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTION PROGRESS")
	assert.Contains(t, output, "✓ Resume A: Extraction complete (10:11:12)")
	assert.Contains(t, output, "✗ Resume B")
	assert.Contains(t, output, "· c: pending")
}

func TestPrintProgress_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgress(nil, nil)
	assert.Empty(t, buf.String())
}

func TestPrintBatch(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatch(pipeline.BatchResult{
		Status: "Processed 2/3 documents successfully",
		Outcomes: []extraction.Outcome{
			{Mapping: types.SourceDocumentMapping{SourceID: "a"}, State: extraction.StateDone, Attempt: types.ExtractionAttempt{FinalIsValid: true}},
			{Mapping: types.SourceDocumentMapping{SourceID: "b"}, State: extraction.StateDone},
			{Mapping: types.SourceDocumentMapping{SourceID: "c"}, State: extraction.StateFailed, Err: errors.New("document not found")},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "BATCH EXTRACTION")
	assert.Contains(t, output, "Processed 2/3 documents successfully")
	assert.Contains(t, output, "✓ a: saved")
	assert.Contains(t, output, "! b: saved, structure invalid")
	assert.Contains(t, output, "✗ c: document not found")
}

func TestPrintCanonical(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCanonical(&types.CanonicalResumeRecord{
		StructuredResult:        resumeJSON,
		SourceDocumentNames:     []string{"Resume A"},
		NumberOfSourceDocuments: 1,
		IsValidStructure:        true,
	})
	output := buf.String()

	assert.Contains(t, output, "CANONICAL RESUME")
	assert.Contains(t, output, "Sources (1): Resume A")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "Analyst, Engine Co")
	assert.Contains(t, output, "Skills (2): math, poetry")
}

func TestPrintCanonical_NumericGPA(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCanonical(&types.CanonicalResumeRecord{
		StructuredResult: `{"fullName": "Ada Lovelace", "contact": {"email": "", "phone": "", "location": ""}, "summary": "", "workExperience": [], ` +
			`"education": [{"degree": "BSc", "institution": "Cambridge", "startDate": "", "endDate": "", "gpa": 3.8}], "skills": []}`,
		IsValidStructure: true,
	})
	output := buf.String()

	assert.NotContains(t, output, "Raw result:")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "BSc, Cambridge (GPA 3.8)")
}

func TestPrintExtraction_InvalidStructure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	msg := "unexpected end of JSON input"

	p.PrintExtraction("a-out", &types.ExtractionRecord{
		StructuredResult: `{"fullName": "Ada"`,
		StructureError:   &msg,
		RepairAttempted:  true,
		SourceDocument:   "a",
	})
	output := buf.String()

	assert.Contains(t, output, "EXTRACTION a-out")
	assert.Contains(t, output, "repair attempted")
	assert.Contains(t, output, msg)
	assert.Contains(t, output, "Raw result:")
}

func TestPrintNil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintCanonical(nil)
	p.PrintExtraction("x", nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesByRune(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("é", 100))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
