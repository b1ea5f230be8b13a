package consolidation

import "errors"

// Failure kinds carried in a Result. Messages double as the status text.
var (
	ErrNoInputs          = errors.New("no processed documents found")
	ErrCompletionFailure = errors.New("consolidation failed")
	ErrPersistFailure    = errors.New("failed to save canonical record")
	ErrUnexpected        = errors.New("unexpected error")
)
