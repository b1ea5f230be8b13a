package types

import "time"

// ProgressEntry is the status-board view of one source document
type ProgressEntry struct {
	StatusText    string     `json:"statusText"`
	Completed     bool       `json:"completed"`
	Error         string     `json:"error,omitempty"`
	LastProcessed *time.Time `json:"lastProcessed,omitempty"`
}

// ProgressState maps source IDs to their current progress entry
type ProgressState map[string]ProgressEntry

// ProgressUpdate is emitted on every extraction state transition
type ProgressUpdate struct {
	SourceID      string     `json:"sourceId"`
	StatusText    string     `json:"statusText"`
	Completed     bool       `json:"completed"`
	Error         string     `json:"error,omitempty"`
	LastProcessed *time.Time `json:"lastProcessed,omitempty"`
}

// Entry converts the update into the entry stored in a ProgressState.
func (u ProgressUpdate) Entry() ProgressEntry {
	return ProgressEntry{
		StatusText:    u.StatusText,
		Completed:     u.Completed,
		Error:         u.Error,
		LastProcessed: u.LastProcessed,
	}
}
