package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// envelope is the uniform response shape: the payload plus any soft
// warnings the selection or canonicalization produced.
type envelope struct {
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any, warns []dataset.Warning) {
	env := envelope{Data: data}
	for _, wn := range warns {
		env.Warnings = append(env.Warnings, wn.String())
	}
	writeJSON(w, http.StatusOK, env)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// writeEngineError maps engine error kinds to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrInvalidSelection):
		writeError(w, http.StatusBadRequest, "invalid_selection", err)
	case errors.Is(err, dataset.ErrCancelled):
		writeError(w, http.StatusGatewayTimeout, "cancelled", err)
	case errors.Is(err, dataset.ErrSchemaMissing):
		writeError(w, http.StatusUnprocessableEntity, "schema_missing", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// requireGet rejects non-GET methods; every route on this surface is a read.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
		return false
	}
	return true
}
