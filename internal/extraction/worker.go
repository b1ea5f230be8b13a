// Package extraction converts one source document's raw text into a stored
// ExtractionRecord, with a single repair attempt when the completion does not
// parse.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-intake/internal/llm"
	"github.com/jonathan/resume-intake/internal/repair"
	"github.com/jonathan/resume-intake/internal/schemas"
	"github.com/jonathan/resume-intake/internal/store"
	"github.com/jonathan/resume-intake/internal/types"
)

// Reporter receives a progress update on every state transition
type Reporter func(types.ProgressUpdate)

// Prompts are the instruction prompts a Worker sends
type Prompts struct {
	Extraction string
	Repair     string
	Version    string
}

// Outcome is the result of one Worker run. State is always StateDone or
// StateFailed. Err holds the failure kind when State is StateFailed;
// Diagnostic holds ErrRepairFailure when the record was saved with an
// invalid structure.
type Outcome struct {
	Mapping    types.SourceDocumentMapping
	State      State
	Attempt    types.ExtractionAttempt
	Record     *types.ExtractionRecord
	Err        error
	Diagnostic error
}

// Succeeded reports whether a record was persisted, valid or not
func (o Outcome) Succeeded() bool {
	return o.State == StateDone
}

// Worker runs the extraction state machine for one mapping at a time
type Worker struct {
	store     store.Store
	completer llm.Completer
	repairer  llm.Completer
	resolver  *repair.Resolver
	prompts   Prompts
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Worker
type Option func(*Worker)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithRepairCompleter sends repair requests to a different completer, e.g.
// a cheaper model tier
func WithRepairCompleter(c llm.Completer) Option {
	return func(w *Worker) { w.repairer = c }
}

// NewWorker creates a Worker. The completer is used for extraction and,
// unless WithRepairCompleter is given, for repair.
func NewWorker(s store.Store, completer llm.Completer, prompts Prompts, opts ...Option) *Worker {
	w := &Worker{
		store:     s,
		completer: completer,
		repairer:  completer,
		prompts:   prompts,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.resolver = repair.NewResolver(w.repairer, prompts.Repair, w.logger)
	return w
}

// run carries the per-invocation state so the Worker itself stays reusable
type run struct {
	w       *Worker
	mapping types.SourceDocumentMapping
	report  Reporter
	state   State
	log     zerolog.Logger
}

func (r *run) enter(s State) {
	r.state = s
	r.log.Debug().Str("state", string(s)).Msg("extraction.state")
	r.report(types.ProgressUpdate{SourceID: r.mapping.SourceID, StatusText: s.statusText()})
}

func (r *run) fail(out Outcome, err error) Outcome {
	from := r.state
	r.state = StateFailed
	now := r.w.now().UTC()
	out.State = StateFailed
	out.Err = err
	r.log.Error().Err(err).Str("from", string(from)).Msg("extraction.failed")
	r.report(types.ProgressUpdate{
		SourceID:      r.mapping.SourceID,
		StatusText:    "Failed: " + err.Error(),
		Completed:     true,
		Error:         err.Error(),
		LastProcessed: &now,
	})
	return out
}

// Run extracts one mapping. It never returns an error or panics; every
// failure is reported through the Outcome and a final progress update with
// Completed set. report may be nil.
func (w *Worker) Run(ctx context.Context, mapping types.SourceDocumentMapping, report Reporter) (out Outcome) {
	if report == nil {
		report = func(types.ProgressUpdate) {}
	}
	r := &run{
		w:       w,
		mapping: mapping,
		report:  report,
		state:   StateIdle,
		log:     w.logger.With().Str("source_id", mapping.SourceID).Str("target_id", mapping.TargetID).Logger(),
	}
	out = Outcome{Mapping: mapping, State: StateIdle, Attempt: types.ExtractionAttempt{SourceID: mapping.SourceID}}

	defer func() {
		if p := recover(); p != nil {
			out = r.fail(out, fmt.Errorf("%w: %v", ErrUnexpected, p))
		}
	}()

	return r.execute(ctx, out)
}

func (r *run) execute(ctx context.Context, out Outcome) Outcome {
	w := r.w

	r.enter(StateRetrievingSource)
	rawText, err := store.GetText(ctx, w.store, store.SourceKey(r.mapping.SourceID))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return r.fail(out, ErrSourceNotFound)
	case err != nil:
		r.log.Error().Err(err).Msg("extraction.source.read_error")
		return r.fail(out, ErrSourceRead)
	case strings.TrimSpace(rawText) == "":
		return r.fail(out, ErrEmptySource)
	}

	r.enter(StateExtracting)
	completion, ok := w.completer.Complete(ctx, rawText, w.prompts.Extraction)
	if !ok {
		return r.fail(out, ErrCompletionFailure)
	}
	out.Attempt.RawCompletion = completion

	resolved := w.resolver.Resolve(ctx, completion, func(s repair.Stage) {
		switch s {
		case repair.StageValidating:
			r.enter(StateValidating)
		case repair.StageRepairing:
			r.enter(StateRepairing)
		case repair.StageReValidating:
			r.enter(StateReValidating)
		}
	})
	out.Attempt.SanitizedCompletion = resolved.Sanitized
	out.Attempt.IsValid = resolved.IsValid
	out.Attempt.ValidationError = resolved.ValidationError
	out.Attempt.RepairAttempted = resolved.RepairAttempted
	out.Attempt.RepairCompletion = resolved.RepairCompletion
	out.Attempt.FinalCompletion = resolved.Final
	out.Attempt.FinalIsValid = resolved.FinalIsValid

	if !resolved.FinalIsValid {
		out.Diagnostic = fmt.Errorf("%w: %w: %s", ErrRepairFailure, ErrStructureInvalid, resolved.FinalError)
	}

	r.enter(StatePersisting)
	record := &types.ExtractionRecord{
		OriginalText:       rawText,
		StructuredResult:   resolved.Final,
		RawFirstCompletion: completion,
		ExtractionPrompt:   w.prompts.Extraction,
		RepairAttempted:    resolved.RepairAttempted,
		RepairCompletion:   resolved.RepairCompletion,
		IsValidStructure:   resolved.FinalIsValid,
		StructureError:     resolved.FinalErrorPtr(),
		PromptVersion:      w.prompts.Version,
		ProcessedAt:        w.now().UTC(),
		SourceDocument:     r.mapping.SourceID,
	}
	if resolved.RepairAttempted {
		record.RepairPrompt = w.resolver.Prompt()
	}
	if resolved.FinalIsValid {
		record.ShapeErrors = schemas.ShapeErrors(resolved.Parsed)
	}

	if err := store.PutJSON(ctx, w.store, store.ExtractionKey(r.mapping.TargetID), record); err != nil {
		r.log.Error().Err(err).Msg("extraction.persist.error")
		return r.fail(out, ErrPersistFailure)
	}

	out.Record = record
	out.State = StateDone
	r.state = StateDone

	status := "Extraction complete"
	switch {
	case !resolved.FinalIsValid:
		status = "Extraction saved with invalid structure"
	case resolved.Repaired():
		status = "Extraction complete (repaired)"
	}
	processed := record.ProcessedAt
	r.report(types.ProgressUpdate{
		SourceID:      r.mapping.SourceID,
		StatusText:    status,
		Completed:     true,
		LastProcessed: &processed,
	})
	r.log.Info().
		Bool("valid", resolved.FinalIsValid).
		Bool("repair_attempted", resolved.RepairAttempted).
		Bool("repaired", resolved.Repaired()).
		Int("shape_errors", len(record.ShapeErrors)).
		Msg("extraction.done")
	return out
}
