// Package consolidation merges the stored extraction records of several
// source documents into one canonical resume record.
package consolidation

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

// Separator marks the boundary between documents in the combined input
const Separator = "\n\n--- NEXT DOCUMENT ---\n\n"

// Prompts are the instruction prompts an Engine sends
type Prompts struct {
	Consolidation string
	Repair        string
	Version       string
}

// Result reports a consolidation run. Record is set only when OK.
type Result struct {
	OK     bool
	Status string
	Err    error
	Record *types.CanonicalResumeRecord
	// Skipped lists target IDs that had no usable extraction record
	Skipped []string
}

// Engine runs consolidation against a store
type Engine struct {
	store     store.Store
	completer llm.Completer
	repairer  llm.Completer
	resolver  *repair.Resolver
	prompts   Prompts
	userID    string
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithUserID selects whose canonical record is written
func WithUserID(userID string) Option {
	return func(e *Engine) { e.userID = userID }
}

// WithRepairCompleter sends repair requests to a different completer
func WithRepairCompleter(c llm.Completer) Option {
	return func(e *Engine) { e.repairer = c }
}

// NewEngine creates an Engine
func NewEngine(s store.Store, completer llm.Completer, prompts Prompts, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		completer: completer,
		repairer:  completer,
		prompts:   prompts,
		userID:    store.DefaultUserID,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = repair.NewResolver(e.repairer, prompts.Repair, e.logger)
	return e
}

// CanonicalKey is the store key this engine writes
func (e *Engine) CanonicalKey() string {
	return store.CanonicalKey(e.userID)
}

type input struct {
	targetID string
	name     string
	text     string
}

// collect gathers every non-empty structured result, valid or not
func (e *Engine) collect(ctx context.Context, mappings []types.SourceDocumentMapping) (inputs []input, skipped []string) {
	for _, m := range mappings {
		var rec types.ExtractionRecord
		err := store.GetJSON(ctx, e.store, store.ExtractionKey(m.TargetID), &rec)
		switch {
		case errors.Is(err, store.ErrNotFound):
			skipped = append(skipped, m.TargetID)
			continue
		case err != nil:
			e.logger.Warn().Err(err).Str("target_id", m.TargetID).Msg("consolidation.collect.unreadable")
			skipped = append(skipped, m.TargetID)
			continue
		case strings.TrimSpace(rec.StructuredResult) == "":
			skipped = append(skipped, m.TargetID)
			continue
		}
		inputs = append(inputs, input{targetID: m.TargetID, name: m.Name(), text: rec.StructuredResult})
	}
	return inputs, skipped
}

func failed(err error, skipped []string) Result {
	return Result{Status: err.Error(), Err: err, Skipped: skipped}
}

// ConsolidateAll merges the extraction records of mappings into the
// canonical record. The canonical key is written at most once, at the end;
// on any failure nothing is written.
func (e *Engine) ConsolidateAll(ctx context.Context, mappings []types.SourceDocumentMapping) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error().Interface("panic", p).Msg("consolidation.panic")
			res = failed(fmt.Errorf("%w: %v", ErrUnexpected, p), nil)
		}
	}()

	inputs, skipped := e.collect(ctx, mappings)
	if len(inputs) == 0 {
		e.logger.Warn().Int("mappings", len(mappings)).Msg("consolidation.no_inputs")
		return failed(ErrNoInputs, skipped)
	}

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.text
	}
	blob := strings.Join(texts, Separator)

	completion, ok := e.completer.Complete(ctx, blob, e.prompts.Consolidation)
	if !ok {
		e.logger.Error().Int("inputs", len(inputs)).Msg("consolidation.complete.failed")
		return failed(ErrCompletionFailure, skipped)
	}

	resolved := e.resolver.Resolve(ctx, completion, nil)

	record := &types.CanonicalResumeRecord{
		StructuredResult:           resolved.Final,
		SourceDocuments:            make([]string, 0, len(inputs)),
		SourceDocumentNames:        make([]string, 0, len(inputs)),
		NumberOfSourceDocuments:    len(inputs),
		ProcessedAt:                e.now().UTC(),
		IsValidStructure:           resolved.FinalIsValid,
		StructureError:             resolved.FinalErrorPtr(),
		RepairAttempted:            resolved.RepairAttempted,
		RawConsolidationCompletion: completion,
		PromptVersion:              e.prompts.Version,
	}
	for _, in := range inputs {
		record.SourceDocuments = append(record.SourceDocuments, in.targetID)
		record.SourceDocumentNames = append(record.SourceDocumentNames, in.name)
	}
	if resolved.FinalIsValid {
		record.ShapeErrors = schemas.ShapeErrors(resolved.Parsed)
	}

	if err := store.PutJSON(ctx, e.store, e.CanonicalKey(), record); err != nil {
		e.logger.Error().Err(err).Msg("consolidation.persist.error")
		return failed(ErrPersistFailure, skipped)
	}

	status := fmt.Sprintf("Consolidated %d source document(s) into the canonical resume", len(inputs))
	if !resolved.FinalIsValid {
		status += " (structure invalid)"
	}
	e.logger.Info().
		Int("inputs", len(inputs)).
		Int("skipped", len(skipped)).
		Bool("valid", resolved.FinalIsValid).
		Bool("repaired", resolved.Repaired()).
		Msg("consolidation.done")
	return Result{OK: true, Status: status, Record: record, Skipped: skipped}
}
