package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/resume-intake/internal/consolidation"
	"github.com/jonathan/resume-intake/internal/extraction"
	"github.com/jonathan/resume-intake/internal/ingestion"
	"github.com/jonathan/resume-intake/internal/pipeline"
	"github.com/jonathan/resume-intake/internal/store"
	"github.com/jonathan/resume-intake/internal/types"
)

// maxSourceBytes caps uploaded source text
const maxSourceBytes = 2 << 20

// SelectionRequest optionally restricts a batch or consolidation to some
// configured sources. An empty body selects all of them.
type SelectionRequest struct {
	SourceIDs []string `json:"sourceIds" validate:"omitempty,unique,dive,required"`
}

// SourceResponse is returned after storing a source document
type SourceResponse struct {
	SourceID   string `json:"sourceId"`
	Format     string `json:"format"`
	Characters int    `json:"characters"`
	Hash       string `json:"hash"`
}

// ExtractionResponse summarises one extraction outcome
type ExtractionResponse struct {
	SourceID         string                  `json:"sourceId"`
	TargetID         string                  `json:"targetId"`
	State            string                  `json:"state"`
	Succeeded        bool                    `json:"succeeded"`
	Error            string                  `json:"error,omitempty"`
	Diagnostic       string                  `json:"diagnostic,omitempty"`
	IsValidStructure bool                    `json:"isValidStructure"`
	RepairAttempted  bool                    `json:"repairAttempted"`
	Record           *types.ExtractionRecord `json:"record,omitempty"`
}

// BatchResponse summarises an extract-all run
type BatchResponse struct {
	BatchID        string               `json:"batchId"`
	Status         string               `json:"status"`
	SuccessCount   int                  `json:"successCount"`
	TotalCount     int                  `json:"totalCount"`
	UsableTargets  []string             `json:"usableTargets"`
	InvalidTargets []string             `json:"invalidTargets"`
	Results        []ExtractionResponse `json:"results"`
}

// ConsolidationResponse summarises a consolidation run
type ConsolidationResponse struct {
	OK      bool                         `json:"ok"`
	Status  string                       `json:"status"`
	Error   string                       `json:"error,omitempty"`
	Skipped []string                     `json:"skipped,omitempty"`
	Record  *types.CanonicalResumeRecord `json:"record,omitempty"`
}

// ProgressResponse is the progress board
type ProgressResponse struct {
	Mappings []types.SourceDocumentMapping `json:"mappings"`
	Progress types.ProgressState           `json:"progress"`
}

func newExtractionResponse(out extraction.Outcome) ExtractionResponse {
	resp := ExtractionResponse{
		SourceID:         out.Mapping.SourceID,
		TargetID:         out.Mapping.TargetID,
		State:            string(out.State),
		Succeeded:        out.Succeeded(),
		IsValidStructure: out.Attempt.FinalIsValid,
		RepairAttempted:  out.Attempt.RepairAttempted,
		Record:           out.Record,
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	if out.Diagnostic != nil {
		resp.Diagnostic = out.Diagnostic.Error()
	}
	return resp
}

func newBatchResponse(res pipeline.BatchResult) BatchResponse {
	resp := BatchResponse{
		BatchID:        res.BatchID,
		Status:         res.Status,
		SuccessCount:   res.SuccessCount,
		TotalCount:     res.TotalCount,
		UsableTargets:  res.UsableTargets,
		InvalidTargets: res.InvalidTargets,
		Results:        make([]ExtractionResponse, 0, len(res.Outcomes)),
	}
	if resp.UsableTargets == nil {
		resp.UsableTargets = []string{}
	}
	if resp.InvalidTargets == nil {
		resp.InvalidTargets = []string{}
	}
	for _, out := range res.Outcomes {
		resp.Results = append(resp.Results, newExtractionResponse(out))
	}
	return resp
}

func newConsolidationResponse(res consolidation.Result) ConsolidationResponse {
	resp := ConsolidationResponse{
		OK:      res.OK,
		Status:  res.Status,
		Skipped: res.Skipped,
		Record:  res.Record,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}

func (s *Server) mapping(sourceID string) (types.SourceDocumentMapping, error) {
	for _, m := range s.mappings {
		if m.SourceID == sourceID {
			return m, nil
		}
	}
	return types.SourceDocumentMapping{}, &ErrUnknownSource{SourceID: sourceID}
}

// selection decodes an optional SelectionRequest and resolves it against the
// configured mappings, keeping their configured order.
func (s *Server) selection(r *http.Request) ([]types.SourceDocumentMapping, error) {
	var req SelectionRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return nil, &ErrValidation{Field: "body", Message: err.Error()}
		}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &ErrValidation{Field: "sourceIds", Message: err.Error()}
	}
	if len(req.SourceIDs) == 0 {
		return s.mappings, nil
	}

	wanted := make(map[string]bool, len(req.SourceIDs))
	for _, id := range req.SourceIDs {
		if _, err := s.mapping(id); err != nil {
			return nil, err
		}
		wanted[id] = true
	}
	selected := make([]types.SourceDocumentMapping, 0, len(wanted))
	for _, m := range s.mappings {
		if wanted[m.SourceID] {
			selected = append(selected, m)
		}
	}
	return selected, nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}

// handlePutSource stores the request body as the raw text of a source.
// text/html bodies are reduced to their visible text first.
func (s *Server) handlePutSource(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("sourceId")
	if _, err := s.mapping(sourceID); err != nil {
		s.fail(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSourceBytes+1))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read body: "+err.Error())
		return
	}
	if len(body) > maxSourceBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "Source document too large")
		return
	}

	text := string(body)
	format := ingestion.FormatText
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/html") {
		if text, err = ingestion.ExtractHTML(text); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid HTML: "+err.Error())
			return
		}
		format = ingestion.FormatHTML
	}

	meta, err := ingestion.IngestText(r.Context(), s.store, sourceID, text)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, SourceResponse{
		SourceID:   sourceID,
		Format:     format,
		Characters: meta.Characters,
		Hash:       meta.Hash,
	})
}

// handleExtractOne extracts a single configured source
func (s *Server) handleExtractOne(w http.ResponseWriter, r *http.Request) {
	m, err := s.mapping(r.PathValue("sourceId"))
	if err != nil {
		s.fail(w, err)
		return
	}

	out, err := s.coordinator.RunOne(r.Context(), m, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, HTTPStatus(out.Err), newExtractionResponse(out))
}

// handleExtractAll extracts every selected source and returns the summary
func (s *Server) handleExtractAll(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.selection(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	res, err := s.coordinator.RunAll(r.Context(), mappings, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newBatchResponse(res))
}

// handleExtractAllStream runs a batch and streams progress events via SSE
func (s *Server) handleExtractAllStream(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.selection(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := s.coordinator.RunAll(r.Context(), mappings, func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent(ev.Kind, ev); err != nil {
			s.logger.Warn().Err(err).Str("kind", ev.Kind).Msg("sse.write.error")
		}
	})
	if err != nil {
		// Nothing has been streamed yet
		s.fail(w, err)
		return
	}
	sse.WriteComplete(newBatchResponse(res))
}

// handleConsolidate merges the selected sources' records into the canonical record
func (s *Server) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.selection(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	res, err := s.coordinator.Consolidate(r.Context(), mappings)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, HTTPStatus(res.Err), newConsolidationResponse(res))
}

// handleProgress returns the progress board
func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, ProgressResponse{
		Mappings: s.mappings,
		Progress: s.coordinator.Progress(),
	})
}

// handleGetRecord returns a stored extraction record
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	var rec types.ExtractionRecord
	if err := store.GetJSON(r.Context(), s.store, store.ExtractionKey(r.PathValue("targetId")), &rec); err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleGetCanonical returns the stored canonical resume record
func (s *Server) handleGetCanonical(w http.ResponseWriter, r *http.Request) {
	var rec types.CanonicalResumeRecord
	if err := store.GetJSON(r.Context(), s.store, store.CanonicalKey(s.userID), &rec); err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}
