package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/momager/momager-core/internal/apperror"
)

const maxBodyBytes = 1 << 20

// Every /plumbing failure answers with this body so callers learn nothing
// about which step failed.
var failureBody = map[string]any{"success": false, "reason": "unknown"}

var successBody = map[string]any{"success": true}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, successBody)
}

// writeFailure logs err and answers with the generic failure body.
// Client mistakes log at warn level, everything else at error level.
func writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	attrs := []any{"path", r.URL.Path, "method", r.Method}
	if err != nil {
		attrs = append(attrs, "error", err)
	}

	if err == nil || apperror.IsExternal(err) {
		slog.WarnContext(r.Context(), msg, attrs...)
	} else {
		slog.ErrorContext(r.Context(), msg, attrs...)
	}
	writeJSON(w, http.StatusOK, failureBody)
}

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return apperror.New("Request body is required", apperror.StatusExternal, errEmptyBody)
	}
	if err != nil {
		return apperror.New("Request body must be valid JSON", apperror.StatusExternal, err)
	}
	return nil
}
