package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-intake/internal/consolidation"
	"github.com/jonathan/resume-intake/internal/extraction"
	"github.com/jonathan/resume-intake/internal/llm"
	"github.com/jonathan/resume-intake/internal/llm/llmtest"
	"github.com/jonathan/resume-intake/internal/store"
	"github.com/jonathan/resume-intake/internal/types"
)

const validResume = `{"fullName": "Ada Lovelace", "contact": {"email": "", "phone": "", "location": ""}, "summary": "", "workExperience": [], "education": [], "skills": []}`

var (
	extractPrompts = extraction.Prompts{Extraction: "EXTRACT", Repair: "REPAIR", Version: "v"}
	mergePrompts   = consolidation.Prompts{Consolidation: "MERGE", Repair: "REPAIR", Version: "v"}
)

func newCoordinator(s store.Store, c llm.Completer) *Coordinator {
	return NewCoordinator(
		extraction.NewWorker(s, c, extractPrompts),
		consolidation.NewEngine(s, c, mergePrompts),
	)
}

func mappingsN(n int) []types.SourceDocumentMapping {
	out := make([]types.SourceDocumentMapping, n)
	for i := range out {
		out[i] = types.SourceDocumentMapping{SourceID: fmt.Sprintf("src-%d", i), TargetID: fmt.Sprintf("out-%d", i)}
	}
	return out
}

func TestRunAll_OneMissingSource(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ctx := context.Background()
			s := store.NewMemory()
			ms := mappingsN(n)
			missing := n / 2
			replies := make([]llmtest.Reply, 0, n)
			for i, m := range ms {
				if i == missing {
					continue
				}
				require.NoError(t, store.PutText(ctx, s, store.SourceKey(m.SourceID), "resume "+m.SourceID))
				replies = append(replies, llmtest.Text(validResume))
			}
			c := llmtest.NewCompleter(replies...)

			res, err := newCoordinator(s, c).RunAll(ctx, ms, nil)
			require.NoError(t, err)

			assert.Equal(t, n-1, res.SuccessCount)
			assert.Equal(t, n, res.TotalCount)
			assert.Equal(t, fmt.Sprintf("Processed %d/%d documents successfully", n-1, n), res.Status)
			require.Len(t, res.Outcomes, n)
			for i, out := range res.Outcomes {
				assert.Contains(t, []extraction.State{extraction.StateDone, extraction.StateFailed}, out.State)
				assert.Equal(t, ms[i].SourceID, out.Mapping.SourceID, "outcomes keep mapping order")
			}
			assert.ErrorIs(t, res.Outcomes[missing].Err, extraction.ErrSourceNotFound)
			assert.NotContains(t, res.UsableTargets, ms[missing].TargetID)
			assert.Len(t, res.UsableTargets, n-1)
			assert.NotEmpty(t, res.BatchID)
		})
	}
}

func TestRunAll_SequentialOrderAndEvents(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	ms := mappingsN(3)
	for _, m := range ms {
		require.NoError(t, store.PutText(ctx, s, store.SourceKey(m.SourceID), "text of "+m.SourceID))
	}
	c := llmtest.NewCompleter(llmtest.Text(`{}`), llmtest.Text("broken"), llmtest.Fail(), llmtest.Fail())

	var events []ProgressEvent
	coord := newCoordinator(s, c)
	res, err := coord.RunAll(ctx, ms, func(ev ProgressEvent) { events = append(events, ev) })
	require.NoError(t, err)

	calls := c.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "text of src-0", calls[0].Input)
	assert.Equal(t, "text of src-1", calls[1].Input)
	assert.Equal(t, "REPAIR", calls[2].Instruction)
	assert.Equal(t, "text of src-2", calls[3].Input)

	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, []string{"out-0", "out-1"}, res.UsableTargets)
	assert.Equal(t, []string{"out-1"}, res.InvalidTargets)

	require.NotEmpty(t, events)
	assert.Equal(t, EventBatchStarted, events[0].Kind)
	assert.Equal(t, EventBatchFinished, events[len(events)-1].Kind)
	assert.Equal(t, res.Status, events[len(events)-1].Status)

	progress := coord.Progress()
	require.Len(t, progress, 3)
	for _, m := range ms {
		assert.True(t, progress[m.SourceID].Completed)
	}
	assert.Equal(t, "extraction failed", progress["src-2"].Error)
}

func TestRunAll_ResetsProgress(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	coord := newCoordinator(s, llmtest.NewCompleter())

	_, err := coord.RunAll(ctx, mappingsN(3), nil)
	require.NoError(t, err)
	require.Len(t, coord.Progress(), 3)

	_, err = coord.RunAll(ctx, mappingsN(1), nil)
	require.NoError(t, err)
	assert.Len(t, coord.Progress(), 1)
}

// blockingCompleter parks every call until released
type blockingCompleter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCompleter) Complete(context.Context, string, string) (string, bool) {
	b.started <- struct{}{}
	<-b.release
	return `{}`, true
}

func TestGuard_RejectsOverlap(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	ms := mappingsN(1)
	require.NoError(t, store.PutText(ctx, s, store.SourceKey(ms[0].SourceID), "text"))

	b := &blockingCompleter{started: make(chan struct{}, 1), release: make(chan struct{})}
	coord := newCoordinator(s, b)

	done := make(chan BatchResult, 1)
	go func() {
		res, _ := coord.RunAll(ctx, ms, nil)
		done <- res
	}()

	select {
	case <-b.started:
	case <-time.After(5 * time.Second):
		t.Fatal("batch never started")
	}

	_, err := coord.RunAll(ctx, ms, nil)
	assert.ErrorIs(t, err, ErrBatchInProgress)
	_, err = coord.RunOne(ctx, ms[0], nil)
	assert.ErrorIs(t, err, ErrBatchInProgress)
	_, err = coord.Consolidate(ctx, ms)
	assert.ErrorIs(t, err, ErrBatchInProgress)

	close(b.release)
	res := <-done
	assert.Equal(t, 1, res.SuccessCount)

	_, err = coord.RunOne(ctx, ms[0], nil)
	assert.NoError(t, err, "guard is released after the batch")
}

func TestRunOne_UpdatesSingleEntry(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	ms := mappingsN(2)
	require.NoError(t, store.PutText(ctx, s, store.SourceKey(ms[1].SourceID), "text"))
	coord := newCoordinator(s, llmtest.NewCompleter(llmtest.Text(validResume)))

	_, err := coord.RunAll(ctx, ms[:1], nil)
	require.NoError(t, err)

	out, err := coord.RunOne(ctx, ms[1], nil)
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
	assert.Len(t, coord.Progress(), 2)
}

func TestConsolidate_NotConfigured(t *testing.T) {
	coord := NewCoordinator(extraction.NewWorker(store.NewMemory(), llmtest.NewCompleter(), extractPrompts), nil)
	_, err := coord.Consolidate(context.Background(), nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBatchInProgress)
}
