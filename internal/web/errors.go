package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as JSON with a stable machine-readable code
//   - Mapped to the right status for the failure class
//
// Status mapping:
//   - mapping.ValidationError        -> 422 (fix the mapping, retry)
//   - source.ErrAuthExpired          -> 401 (re-export upstream by hand)
//   - store.ErrNotFound              -> 404
//   - everything else                -> caller-supplied status

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pedalworks/rosterd/internal/logging"
	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/source"
	"github.com/pedalworks/rosterd/internal/store"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`
}

// respondError classifies err, logs the technical detail, and writes
// the client-facing response. fallback is used when the error carries
// no status of its own.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := fallback
	resp := ErrorResponse{Error: err.Error(), Code: "internal"}

	var verr *mapping.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		resp = ErrorResponse{
			Error:  verr.Msg,
			Code:   "mapping-invalid",
			Action: "Fix the field mapping and try again.",
		}
	case errors.Is(err, source.ErrAuthExpired):
		status = http.StatusUnauthorized
		resp = ErrorResponse{
			Error:  "upstream authorization expired",
			Code:   "source-auth-expired",
			Action: "Re-export the roster from the upstream system and paste it in.",
		}
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		resp = ErrorResponse{Error: "not found", Code: "not-found"}
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", resp.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, resp)
}

// respondConflict reports header drift or a stale pending state with a
// payload the client can render.
func (s *Server) respondConflict(w http.ResponseWriter, r *http.Request, code, msg string, detail any) {
	logging.FromContext(r.Context()).Warn("request conflict",
		"path", r.URL.Path, "code", code, "detail", msg)
	writeJSON(w, http.StatusConflict, map[string]any{
		"error":  msg,
		"code":   code,
		"detail": detail,
	})
}

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing to do but note it.
		slog.Error("json encode error", "error", err)
	}
}
