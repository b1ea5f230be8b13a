// Package pipeline sequences extraction over a list of source documents and
// guards batch and consolidation runs against overlapping.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/resume-intake/internal/consolidation"
	"github.com/jonathan/resume-intake/internal/extraction"
	"github.com/jonathan/resume-intake/internal/types"
)

// ErrBatchInProgress is returned when a batch, single extraction or
// consolidation is requested while another one is running
var ErrBatchInProgress = errors.New("a batch is already in progress")

// BatchResult summarises one RunAll call
type BatchResult struct {
	BatchID      string
	SuccessCount int
	TotalCount   int
	Outcomes     []extraction.Outcome
	// UsableTargets are the target IDs that now hold a persisted record
	UsableTargets []string
	// InvalidTargets is the subset of UsableTargets saved with an invalid structure
	InvalidTargets []string
	Status         string
}

// Coordinator runs extraction and consolidation one at a time
type Coordinator struct {
	worker  *extraction.Worker
	engine  *consolidation.Engine
	tracker *Tracker
	guard   *semaphore.Weighted
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithClock overrides the time source for event timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a Coordinator. engine may be nil when only
// extraction is needed.
func NewCoordinator(worker *extraction.Worker, engine *consolidation.Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		worker:  worker,
		engine:  engine,
		tracker: NewTracker(),
		guard:   semaphore.NewWeighted(1),
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Progress returns a snapshot of the current batch's progress
func (c *Coordinator) Progress() types.ProgressState {
	return c.tracker.Snapshot()
}

func (c *Coordinator) emit(cb ProgressCallback, ev ProgressEvent) {
	if cb != nil {
		ev.At = c.now().UTC()
		cb(ev)
	}
}

func (c *Coordinator) reporter(batchID string, cb ProgressCallback) extraction.Reporter {
	return func(u types.ProgressUpdate) {
		c.tracker.Apply(u)
		c.emit(cb, ProgressEvent{Kind: EventProgress, BatchID: batchID, Update: &u})
	}
}

// RunAll extracts every mapping in order, one at a time. A failed mapping
// never stops the batch. Progress is reset when the batch starts. The only
// error is ErrBatchInProgress.
func (c *Coordinator) RunAll(ctx context.Context, mappings []types.SourceDocumentMapping, cb ProgressCallback) (BatchResult, error) {
	if !c.guard.TryAcquire(1) {
		return BatchResult{}, ErrBatchInProgress
	}
	defer c.guard.Release(1)

	batchID := uuid.NewString()
	log := c.logger.With().Str("batch_id", batchID).Logger()
	c.tracker.Reset()

	result := BatchResult{
		BatchID:    batchID,
		TotalCount: len(mappings),
		Outcomes:   make([]extraction.Outcome, 0, len(mappings)),
	}
	log.Info().Int("total", len(mappings)).Msg("batch.start")
	c.emit(cb, ProgressEvent{Kind: EventBatchStarted, BatchID: batchID, Status: fmt.Sprintf("Processing %d documents", len(mappings))})

	report := c.reporter(batchID, cb)
	for _, m := range mappings {
		out := c.worker.Run(ctx, m, report)
		result.Outcomes = append(result.Outcomes, out)
		if !out.Succeeded() {
			log.Warn().Err(out.Err).Str("source_id", m.SourceID).Msg("batch.document.failed")
			continue
		}
		result.SuccessCount++
		result.UsableTargets = append(result.UsableTargets, m.TargetID)
		if !out.Attempt.FinalIsValid {
			result.InvalidTargets = append(result.InvalidTargets, m.TargetID)
		}
	}

	result.Status = fmt.Sprintf("Processed %d/%d documents successfully", result.SuccessCount, result.TotalCount)
	log.Info().
		Int("success", result.SuccessCount).
		Int("total", result.TotalCount).
		Int("invalid", len(result.InvalidTargets)).
		Msg("batch.done")
	c.emit(cb, ProgressEvent{Kind: EventBatchFinished, BatchID: batchID, Status: result.Status})
	return result, nil
}

// RunOne extracts a single mapping. Only that mapping's progress entry is
// replaced.
func (c *Coordinator) RunOne(ctx context.Context, mapping types.SourceDocumentMapping, cb ProgressCallback) (extraction.Outcome, error) {
	if !c.guard.TryAcquire(1) {
		return extraction.Outcome{}, ErrBatchInProgress
	}
	defer c.guard.Release(1)

	return c.worker.Run(ctx, mapping, c.reporter("", cb)), nil
}

// Consolidate runs the consolidation engine under the same guard as
// batches, so it never reads records a running batch is still writing.
func (c *Coordinator) Consolidate(ctx context.Context, mappings []types.SourceDocumentMapping) (consolidation.Result, error) {
	if c.engine == nil {
		return consolidation.Result{}, errors.New("consolidation is not configured")
	}
	if !c.guard.TryAcquire(1) {
		return consolidation.Result{}, ErrBatchInProgress
	}
	defer c.guard.Release(1)

	return c.engine.ConsolidateAll(ctx, mappings), nil
}
