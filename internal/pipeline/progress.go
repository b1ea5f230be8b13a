package pipeline

import (
	"sync"
	"time"

	"github.com/jonathan/resume-intake/internal/types"
)

// Event kinds delivered to a ProgressCallback
const (
	EventBatchStarted  = "batch_started"
	EventProgress      = "progress"
	EventBatchFinished = "batch_finished"
)

// ProgressEvent represents a progress update during a batch run
type ProgressEvent struct {
	Kind    string                `json:"kind"`
	BatchID string                `json:"batch_id,omitempty"`
	Update  *types.ProgressUpdate `json:"update,omitempty"`
	Status  string                `json:"status,omitempty"`
	At      time.Time             `json:"at"`
}

// ProgressCallback is called when batch progress occurs
type ProgressCallback func(event ProgressEvent)

// Tracker holds the ProgressState for the current batch. It is safe for
// concurrent readers while a batch writes to it.
type Tracker struct {
	mu    sync.RWMutex
	state types.ProgressState
}

// NewTracker creates an empty Tracker
func NewTracker() *Tracker {
	return &Tracker{state: types.ProgressState{}}
}

// Reset discards every entry
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.state = types.ProgressState{}
	t.mu.Unlock()
}

// Apply records an update as the source's current entry. An update without
// a timestamp keeps the previous LastProcessed.
func (t *Tracker) Apply(u types.ProgressUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := u.Entry()
	if entry.LastProcessed == nil {
		entry.LastProcessed = t.state[u.SourceID].LastProcessed
	}
	t.state[u.SourceID] = entry
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() types.ProgressState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(types.ProgressState, len(t.state))
	for k, v := range t.state {
		out[k] = v
	}
	return out
}

