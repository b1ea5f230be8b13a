package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-intake/internal/llm/llmtest"
	"github.com/jonathan/resume-intake/internal/store"
	"github.com/jonathan/resume-intake/internal/types"
)

// A has text, B is empty: only A is extracted and consolidated.
func TestScenario_ValidAndEmptySource(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	ms := []types.SourceDocumentMapping{
		{SourceID: "A", TargetID: "A-out", DisplayName: "Resume A"},
		{SourceID: "B", TargetID: "B-out", DisplayName: "Resume B"},
	}
	require.NoError(t, store.PutText(ctx, s, store.SourceKey("A"), "Ada Lovelace, analyst"))
	require.NoError(t, store.PutText(ctx, s, store.SourceKey("B"), ""))

	c := llmtest.NewCompleter(
		llmtest.Text(validResume),
		llmtest.Text("Here is the merged resume:\n"+validResume),
	)
	coord := newCoordinator(s, c)

	res, err := coord.RunAll(ctx, ms, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 2, res.TotalCount)

	var recA types.ExtractionRecord
	require.NoError(t, store.GetJSON(ctx, s, store.ExtractionKey("A-out"), &recA))
	assert.True(t, recA.IsValidStructure)

	_, err = s.Get(ctx, store.ExtractionKey("B-out"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	progB := coord.Progress()["B"]
	assert.True(t, progB.Completed)
	assert.Equal(t, "no text content found", progB.Error)

	merged, err := coord.Consolidate(ctx, ms)
	require.NoError(t, err)
	require.True(t, merged.OK, merged.Status)
	assert.Equal(t, 1, merged.Record.NumberOfSourceDocuments)
	assert.Equal(t, []string{"A-out"}, merged.Record.SourceDocuments)
	assert.Equal(t, []string{"Resume A"}, merged.Record.SourceDocumentNames)
	assert.True(t, merged.Record.IsValidStructure)

	calls := c.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, validResume, calls[1].Input, "only A's data reaches consolidation")
}
