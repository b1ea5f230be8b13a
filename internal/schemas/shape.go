package schemas

import (
	_ "embed"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchemaJSON string

var (
	resumeSchemaOnce sync.Once
	resumeSchema     *gojsonschema.Schema
	resumeSchemaErr  error
)

func loadResumeSchema() (*gojsonschema.Schema, error) {
	resumeSchemaOnce.Do(func() {
		resumeSchema, resumeSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeSchemaJSON))
		if resumeSchemaErr != nil {
			resumeSchemaErr = &SchemaLoadError{Path: "resume.schema.json", Message: "invalid embedded schema", Cause: resumeSchemaErr}
		}
	})
	return resumeSchema, resumeSchemaErr
}

// CheckResumeShape compares a parsed value against the canonical resume
// schema. It returns nil when the value conforms, a *ValidationError listing
// each mismatch otherwise. Shape mismatches are diagnostics only; they do not
// make well-formed text invalid.
func CheckResumeShape(parsed any) error {
	schema, err := loadResumeSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(parsed))
	if err != nil {
		return &SchemaLoadError{Path: "resume.schema.json", Message: "document could not be loaded", Cause: err}
	}
	return toValidationError(result)
}

// ShapeErrors runs CheckResumeShape and flattens the outcome into
// "field: message" strings, nil when the value conforms.
func ShapeErrors(parsed any) []string {
	switch err := CheckResumeShape(parsed).(type) {
	case nil:
		return nil
	case *ValidationError:
		return err.Messages()
	default:
		return []string{err.Error()}
	}
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
