// Package repair turns a raw completion into the best structured text
// available: sanitize, validate, and on failure make exactly one repair
// request before falling back to the original text.
package repair

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-intake/internal/llm"
	"github.com/jonathan/resume-intake/internal/schemas"
)

// Stage is reported to the caller as resolution progresses
type Stage string

const (
	StageValidating   Stage = "validating"
	StageRepairing    Stage = "repairing"
	StageReValidating Stage = "revalidating"
)

// ErrNoRepairCompletion means the repair request returned nothing
var ErrNoRepairCompletion = errors.New("repair request returned no completion")

// Outcome records everything learned while resolving one completion.
// Final is the repaired text when repair succeeded, otherwise the first
// sanitized text.
type Outcome struct {
	Sanitized       string
	IsValid         bool
	ValidationError string

	RepairAttempted  bool
	RepairCompletion string
	RepairSanitized  string
	RepairError      error

	Final        string
	FinalIsValid bool
	FinalError   string
	Parsed       any
}

// FinalErrorPtr returns the final validation error, nil when valid
func (o Outcome) FinalErrorPtr() *string {
	if o.FinalIsValid {
		return nil
	}
	msg := o.FinalError
	return &msg
}

// Repaired reports whether Final came from the repair completion
func (o Outcome) Repaired() bool {
	return o.RepairAttempted && o.FinalIsValid && !o.IsValid
}

// Resolver validates completions and repairs them once when needed
type Resolver struct {
	completer llm.Completer
	prompt    string
	logger    zerolog.Logger
}

// NewResolver creates a Resolver that sends invalid text to completer with
// the given repair prompt
func NewResolver(completer llm.Completer, repairPrompt string, logger zerolog.Logger) *Resolver {
	return &Resolver{completer: completer, prompt: repairPrompt, logger: logger}
}

// Prompt returns the repair prompt in use
func (r *Resolver) Prompt() string {
	return r.prompt
}

// Resolve sanitizes and validates raw. If it does not parse, the sanitized
// text is sent for repair exactly once. onStage may be nil.
func (r *Resolver) Resolve(ctx context.Context, raw string, onStage func(Stage)) Outcome {
	report := func(s Stage) {
		if onStage != nil {
			onStage(s)
		}
	}

	report(StageValidating)
	out := Outcome{Sanitized: llm.Sanitize(raw)}
	first := schemas.Validate(out.Sanitized)
	out.IsValid = first.IsValid
	out.ValidationError = first.Error

	// Fallback unless repair produces something valid
	out.Final = out.Sanitized
	out.FinalIsValid = first.IsValid
	out.FinalError = first.Error
	out.Parsed = first.Parsed

	if first.IsValid {
		return out
	}

	r.logger.Warn().Str("error", first.Error).Msg("repair.validate.invalid")
	report(StageRepairing)
	out.RepairAttempted = true

	completion, ok := r.completer.Complete(ctx, out.Sanitized, r.prompt)
	if !ok {
		out.RepairError = &Error{Message: "repair failed", Cause: ErrNoRepairCompletion}
		r.logger.Warn().Msg("repair.complete.empty")
		return out
	}
	out.RepairCompletion = completion

	report(StageReValidating)
	out.RepairSanitized = llm.Sanitize(completion)
	second := schemas.Validate(out.RepairSanitized)
	if !second.IsValid {
		out.RepairError = &Error{Message: "repaired text is still invalid", Cause: errors.New(second.Error)}
		r.logger.Warn().Str("error", second.Error).Msg("repair.revalidate.invalid")
		return out
	}

	out.Final = out.RepairSanitized
	out.FinalIsValid = true
	out.FinalError = ""
	out.Parsed = second.Parsed
	r.logger.Info().Msg("repair.revalidate.ok")
	return out
}
