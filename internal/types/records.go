package types

import "time"

// SourceDocumentMapping identifies one raw-text input and where its extracted
// structured output is stored. Mappings are static configuration.
type SourceDocumentMapping struct {
	SourceID    string `json:"sourceId" yaml:"source_id" validate:"required"`
	TargetID    string `json:"targetId" yaml:"target_id" validate:"required"`
	DisplayName string `json:"displayName" yaml:"display_name"`
}

// Name returns the display name, falling back to the source ID.
func (m SourceDocumentMapping) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.SourceID
}

// ExtractionRecord is the persisted outcome of one extraction run, stored
// under the mapping's target ID. Re-running extraction replaces it.
type ExtractionRecord struct {
	OriginalText       string    `json:"originalText"`
	StructuredResult   string    `json:"structuredResult"`
	RawFirstCompletion string    `json:"rawFirstCompletion"`
	ExtractionPrompt   string    `json:"extractionPrompt"`
	RepairPrompt       string    `json:"repairPrompt,omitempty"`
	RepairAttempted    bool      `json:"repairAttempted"`
	RepairCompletion   string    `json:"repairCompletion,omitempty"`
	IsValidStructure   bool      `json:"isValidStructure"`
	StructureError     *string   `json:"structureError"`
	ShapeErrors        []string  `json:"shapeErrors,omitempty"`
	PromptVersion      string    `json:"promptVersion,omitempty"`
	ProcessedAt        time.Time `json:"processedAt"`
	SourceDocument     string    `json:"sourceDocument"`
}

// CanonicalResumeRecord is the single consolidated record kept per user.
// Every consolidation run overwrites it wholesale.
type CanonicalResumeRecord struct {
	StructuredResult           string    `json:"structuredResult"`
	SourceDocuments            []string  `json:"sourceDocuments"`
	SourceDocumentNames        []string  `json:"sourceDocumentNames"`
	NumberOfSourceDocuments    int       `json:"numberOfSourceDocuments"`
	ProcessedAt                time.Time `json:"processedAt"`
	IsValidStructure           bool      `json:"isValidStructure"`
	StructureError             *string   `json:"structureError"`
	ShapeErrors                []string  `json:"shapeErrors,omitempty"`
	RepairAttempted            bool      `json:"repairAttempted"`
	RawConsolidationCompletion string    `json:"rawConsolidationCompletion"`
	PromptVersion              string    `json:"promptVersion,omitempty"`
}

// ExtractionAttempt is the in-memory trace of one extraction run. Its
// persisted fields survive as an ExtractionRecord.
type ExtractionAttempt struct {
	SourceID            string `json:"sourceId"`
	RawCompletion       string `json:"rawCompletion"`
	SanitizedCompletion string `json:"sanitizedCompletion"`
	IsValid             bool   `json:"isValid"`
	ValidationError     string `json:"validationError,omitempty"`
	RepairAttempted     bool   `json:"repairAttempted"`
	RepairCompletion    string `json:"repairCompletion,omitempty"`
	FinalCompletion     string `json:"finalCompletion"`
	FinalIsValid        bool   `json:"finalIsValid"`
}
