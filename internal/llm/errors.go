package llm

import "fmt"

// APICallError represents a failed call to the completion provider
type APICallError struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *APICallError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", msg)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
