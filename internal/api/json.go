package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/manifest"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// unresolvedResponse lists every selected file name that did not resolve.
type unresolvedResponse struct {
	Error     string   `json:"error" validate:"required"`
	FileNames []string `json:"file_names" validate:"required"`
}

// writeServiceError maps a service error to a status code. Unknown errors are
// logged with op and reported as 500.
func writeServiceError(w http.ResponseWriter, op string, err error, attrs ...any) {
	var unresolved *manifest.UnresolvedError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, manifest.ErrEmptySelection):
		writeJSON(w, http.StatusBadRequest, errorBody("no files selected"))
	case errors.Is(err, manifest.ErrInvalidUTF8), errors.Is(err, manifest.ErrTimeOutOfRange):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.As(err, &unresolved):
		writeJSON(w, http.StatusUnprocessableEntity, unresolvedResponse{
			Error:     "unresolved file names",
			FileNames: unresolved.FileNames,
		})
	default:
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
