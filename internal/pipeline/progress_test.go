package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-intake/internal/types"
)

func TestTracker_ApplyAndReset(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tr.Apply(types.ProgressUpdate{SourceID: "a", StatusText: "Extracting"})
	tr.Apply(types.ProgressUpdate{SourceID: "a", StatusText: "Done", Completed: true, LastProcessed: &at})
	tr.Apply(types.ProgressUpdate{SourceID: "b", StatusText: "Failed", Completed: true, Error: "document not found"})

	a, ok := tr.Snapshot()["a"]
	require.True(t, ok)
	assert.Equal(t, "Done", a.StatusText)
	assert.True(t, a.Completed)
	require.NotNil(t, a.LastProcessed)

	snap := tr.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, "document not found", snap["b"].Error)

	snap["c"] = types.ProgressEntry{}
	assert.Len(t, tr.Snapshot(), 2, "snapshot is a copy")

	tr.Reset()
	assert.Empty(t, tr.Snapshot())
}

func TestTracker_KeepsLastProcessed(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tr.Apply(types.ProgressUpdate{SourceID: "a", Completed: true, LastProcessed: &at})
	tr.Apply(types.ProgressUpdate{SourceID: "a", StatusText: "Retrieving"})

	a := tr.Snapshot()["a"]
	require.NotNil(t, a.LastProcessed)
	assert.True(t, at.Equal(*a.LastProcessed))
	assert.False(t, a.Completed)
}
