package store

// DefaultUserID owns the canonical record when no user is configured
const DefaultUserID = "default"

// SourceKey is where the raw text for a source document lives
func SourceKey(sourceID string) string { return "source:" + sourceID }

// ExtractionKey is where the ExtractionRecord for a target lives
func ExtractionKey(targetID string) string { return "extraction:" + targetID }

// CanonicalKey is where a user's consolidated resume lives
func CanonicalKey(userID string) string {
	if userID == "" {
		userID = DefaultUserID
	}
	return "canonical:" + userID
}
