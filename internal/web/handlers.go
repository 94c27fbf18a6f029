package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pedalworks/rosterd/internal/csvio"
	"github.com/pedalworks/rosterd/internal/logging"
	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/reconcile"
	"github.com/pedalworks/rosterd/internal/roster"
	"github.com/pedalworks/rosterd/internal/store"
)

type ctxKey int

const entityKey ctxKey = 0

// entityCtx validates the {entity} URL segment and stashes it in the
// request context.
func (s *Server) entityCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entity := roster.EntityType(chi.URLParam(r, "entity"))
		if !entity.Valid() {
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error: fmt.Sprintf("unknown entity type %q", entity),
				Code:  "unknown-entity",
			})
			return
		}
		ctx := context.WithValue(r.Context(), entityKey, entity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func entityFrom(r *http.Request) roster.EntityType {
	return r.Context().Value(entityKey).(roster.EntityType)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.roster.List(r.Context(), roster.Riders); err != nil {
		logging.FromContext(r.Context()).Error("health check store failure", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----------------------------------------------------------------------------
// Import
// ----------------------------------------------------------------------------

// importRequest is the JSON form of an import body. A raw text/csv
// body is accepted as well.
type importRequest struct {
	CSV string `json:"csv"`
}

// importResponse describes the parsed upload and the mapping the
// client should review before reconciling.
type importResponse struct {
	Headers       []string               `json:"headers"`
	RowCount      int                    `json:"rowCount"`
	Mapping       *mapping.Mapping       `json:"mapping"`
	MappingSource string                 `json:"mappingSource"` // "saved" or "suggested"
	HeadersReport *mapping.HeadersReport `json:"headersReport,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := s.readCSVBody(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.importCSV(w, r, raw)
}

func (s *Server) handleImportFetch(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	url := s.sourceURL(entity)
	if s.fetcher == nil || url == "" {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:  fmt.Sprintf("no upstream export configured for %s", entity),
			Code:   "source-unconfigured",
			Action: "Paste the CSV export instead.",
		})
		return
	}
	raw, err := s.fetcher.Fetch(r.Context(), url)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	s.importCSV(w, r, raw)
}

// importCSV sanitizes, parses, and stages a CSV payload, then answers
// with the headers and the mapping to review.
func (s *Server) importCSV(w http.ResponseWriter, r *http.Request, raw []byte) {
	entity := entityFrom(r)

	text := csvio.Sanitize(raw)
	rows, err := csvio.Parse(text)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if len(rows) < csvio.MinRows {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "the CSV needs a header row and at least one data row",
			Code:   "csv-too-short",
			Action: "Check that the export is not empty.",
		})
		return
	}

	headers := rows[0]
	data := rows[1:]
	s.sessions.get(entity).setCSV(headers, data)

	resp := importResponse{
		Headers:  headers,
		RowCount: len(data),
	}

	saved, err := s.mappings.LoadMapping(r.Context(), entity)
	switch {
	case err == nil:
		report := saved.HeadersMatch(headers)
		resp.Mapping = saved
		resp.MappingSource = "saved"
		resp.HeadersReport = &report
	case errors.Is(err, store.ErrNotFound):
		resp.Mapping = mapping.Suggest(entity, headers)
		resp.MappingSource = "suggested"
	default:
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("csv imported",
		"entity", entity, "rows", len(data), "columns", len(headers),
		"mapping_source", resp.MappingSource)
	writeJSON(w, http.StatusOK, resp)
}

// readCSVBody accepts either a raw CSV body or a JSON envelope.
func (s *Server) readCSVBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.Import.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > s.cfg.Import.MaxBodySize {
		return nil, fmt.Errorf("csv payload exceeds %d bytes", s.cfg.Import.MaxBodySize)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req importRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		return []byte(req.CSV), nil
	}
	return body, nil
}

func (s *Server) sourceURL(entity roster.EntityType) string {
	if entity == roster.Coaches {
		return s.cfg.Source.CoachURL
	}
	return s.cfg.Source.RiderURL
}

// ----------------------------------------------------------------------------
// Mapping
// ----------------------------------------------------------------------------

func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	m, err := s.mappings.LoadMapping(r.Context(), entity)
	if errors.Is(err, store.ErrNotFound) {
		// No saved mapping yet; suggest one when an upload is staged.
		if headers, _, ok := s.sessions.get(entity).csv(); ok {
			writeJSON(w, http.StatusOK, mapping.Suggest(entity, headers))
			return
		}
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handlePutMapping(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	var m mapping.Mapping
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.respondError(w, r, fmt.Errorf("decode mapping: %w", err), http.StatusBadRequest)
		return
	}
	m.EntityType = entity
	if err := m.Validate(); err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	if err := s.mappings.SaveMapping(r.Context(), &m); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	// A staged reconciliation reflects the old mapping; force a rerun.
	s.sessions.get(entity).unstage()
	logging.FromContext(r.Context()).Info("mapping saved", "entity", entity)
	writeJSON(w, http.StatusOK, &m)
}

func (s *Server) handleSuggestMapping(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	sess := s.sessions.get(entity)
	headers, _, ok := sess.csv()
	if !ok {
		s.respondConflict(w, r, "no-import", "import a CSV before requesting a suggestion", nil)
		return
	}
	// Reopening the mapping step abandons any staged reconciliation.
	sess.unstage()
	writeJSON(w, http.StatusOK, mapping.Suggest(entity, headers))
}

// ----------------------------------------------------------------------------
// Reconcile / apply / discard
// ----------------------------------------------------------------------------

type reconcileRequest struct {
	// Force proceeds despite header drift against the saved mapping.
	Force bool `json:"force"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	sess := s.sessions.get(entity)

	headers, rows, ok := sess.csv()
	if !ok {
		s.respondConflict(w, r, "no-import", "import a CSV before reconciling", nil)
		return
	}

	var req reconcileRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, r, fmt.Errorf("decode request: %w", err), http.StatusBadRequest)
			return
		}
	}

	m, err := s.mappings.LoadMapping(r.Context(), entity)
	if errors.Is(err, store.ErrNotFound) {
		s.respondConflict(w, r, "no-mapping", "save a field mapping before reconciling", nil)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if err := m.Validate(); err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	if report := m.HeadersMatch(headers); !report.IsMatch && len(m.CSVHeaders) > 0 && !req.Force {
		s.respondConflict(w, r, "headers-drifted",
			"the CSV columns no longer match the saved mapping", report)
		return
	}

	existing, err := s.roster.List(r.Context(), entity)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	incoming := m.Apply(rows)
	pending := reconcile.Reconcile(incoming, existing, m.Snapshot(headers), s.matchOptions())
	sess.stage(pending)

	logging.FromContext(r.Context()).Info("reconciliation staged",
		"entity", entity,
		"incoming", pending.Counts.Incoming,
		"matched", pending.Counts.Matched,
		"added", pending.Counts.Added,
		"missing", pending.Counts.Missing)
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	sess := s.sessions.get(entity)

	pending, ok := sess.staged()
	if !ok {
		s.respondConflict(w, r, "no-pending", "reconcile before applying", nil)
		return
	}

	var decisions reconcile.Decisions
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&decisions); err != nil {
			s.respondError(w, r, fmt.Errorf("decode decisions: %w", err), http.StatusBadRequest)
			return
		}
	}

	log := logging.FromContext(r.Context())
	result, err := reconcile.Apply(r.Context(), log, pending, decisions,
		s.roster, s.mappings, s.notifier)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	// Partial failures keep the session so the operator can retry; a
	// clean apply ends the import.
	if len(result.Failed) == 0 {
		sess.clear()
	}

	log.Info("reconciliation applied",
		"entity", entity, "total", result.Total, "failed", len(result.Failed))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	s.sessions.get(entity).clear()
	logging.FromContext(r.Context()).Info("import discarded", "entity", entity)
	writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}

// ----------------------------------------------------------------------------
// Roster
// ----------------------------------------------------------------------------

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	records, err := s.roster.List(r.Context(), entity)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("includeArchived") != "true" {
		active := records[:0]
		for _, rec := range records {
			if !rec.Archived {
				active = append(active, rec)
			}
		}
		records = active
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entityType": entity,
		"records":    records,
		"count":      len(records),
	})
}

type archiveRequest struct {
	Archived *bool `json:"archived"`
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	entity := entityFrom(r)
	id := chi.URLParam(r, "id")

	archived := true
	if r.ContentLength != 0 {
		var req archiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, r, fmt.Errorf("decode request: %w", err), http.StatusBadRequest)
			return
		}
		if req.Archived != nil {
			archived = *req.Archived
		}
	}

	rec, err := s.roster.SetArchived(r.Context(), entity, id, archived)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	logging.FromContext(r.Context()).Info("record archive toggled",
		"entity", entity, "id", id, "archived", archived)
	writeJSON(w, http.StatusOK, rec)
}
