// Package schemas checks completion text for well-formed structure and
// compares parsed resumes against the canonical resume JSON Schema.
package schemas

import (
	"encoding/json"
	"strings"
)

// Result is the outcome of Validate. Parsed is set only when IsValid is
// true; Error only when it is false.
type Result struct {
	IsValid bool
	Parsed  any
	Error   string
}

// Validate reports whether text parses as a single JSON document (object,
// array or scalar). Trailing content after the value is a failure. The
// decoded value uses encoding/json's generic types.
func Validate(text string) Result {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		msg := err.Error()
		if strings.TrimSpace(text) == "" {
			msg = "empty input: " + msg
		}
		return Result{Error: msg}
	}
	return Result{IsValid: true, Parsed: parsed}
}
