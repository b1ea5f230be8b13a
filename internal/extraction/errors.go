package extraction

import "errors"

// Failure kinds carried in an Outcome. Messages double as the user-facing
// progress error text.
var (
	ErrSourceNotFound    = errors.New("document not found")
	ErrEmptySource       = errors.New("no text content found")
	ErrSourceRead        = errors.New("failed to read document")
	ErrCompletionFailure = errors.New("extraction failed")
	ErrStructureInvalid  = errors.New("structure invalid")
	ErrRepairFailure     = errors.New("repair failed")
	ErrPersistFailure    = errors.New("failed to save result")
	ErrUnexpected        = errors.New("unexpected error")
)
