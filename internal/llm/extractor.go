// Package llm - extractor.go describes the structured output the extraction
// and consolidation prompts ask the model to produce.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the shape an LLM is asked to return
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "Resume")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected top-level output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint rendered verbatim into the prompt
	Description string // Description for the LLM
	Required    bool   // Whether the key must be present
}

// DescribeSchema renders the schema as the JSON skeleton embedded in prompts.
func DescribeSchema(schema ExtractionSchema) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ResumeSchema returns the canonical resume shape. Every key is required to
// be present; unknown values are empty strings or empty arrays.
func ResumeSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "Resume",
		Description: "A candidate's resume as one structured record.",
		Fields: []SchemaField{
			{
				Name:        "fullName",
				Type:        "\"string\"",
				Description: "Candidate's full name",
				Required:    true,
			},
			{
				Name:        "contact",
				Type:        `{"email": "string", "phone": "string", "location": "string"}`,
				Description: "Contact details, empty strings when absent",
				Required:    true,
			},
			{
				Name:        "summary",
				Type:        "\"string\"",
				Description: "Professional summary or objective",
				Required:    true,
			},
			{
				Name:        "workExperience",
				Type:        `[{"jobTitle": "string", "company": "string", "startDate": "string", "endDate": "string", "responsibilities": ["string"]}]`,
				Description: "Positions, most recent first",
				Required:    true,
			},
			{
				Name:        "education",
				Type:        `[{"degree": "string", "institution": "string", "startDate": "string", "endDate": "string", "gpa": "string"}]`,
				Description: "Degrees and certifications from institutions",
				Required:    true,
			},
			{
				Name:        "skills",
				Type:        "[\"string\"]",
				Description: "Distinct skills, one per entry",
				Required:    true,
			},
		},
	}
}
