package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-intake/internal/consolidation"
	"github.com/jonathan/resume-intake/internal/extraction"
	"github.com/jonathan/resume-intake/internal/pipeline"
	"github.com/jonathan/resume-intake/internal/store"
)

// ErrUnknownSource indicates a sourceId that is not a configured mapping
type ErrUnknownSource struct {
	SourceID string
}

func (e *ErrUnknownSource) Error() string {
	return fmt.Sprintf("unknown source: %s", e.SourceID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var unknown *ErrUnknownSource
	var invalid *ErrValidation
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, pipeline.ErrBatchInProgress):
		return http.StatusConflict
	case errors.As(err, &unknown),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, extraction.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, extraction.ErrEmptySource),
		errors.Is(err, consolidation.ErrNoInputs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, extraction.ErrCompletionFailure),
		errors.Is(err, consolidation.ErrCompletionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
