package ingestion

import "fmt"

// UnsupportedFormatError is returned for file extensions no extractor handles
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q", e.Extension)
}

// ExtractError wraps a failure to read text out of a document
type ExtractError struct {
	Path   string
	Format string
	Cause  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract %s text from %s: %v", e.Format, e.Path, e.Cause)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}
