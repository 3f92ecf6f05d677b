package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/server/services"
)

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, map[string]any{"detail": msg})
}

// writeChallenge is the uniform response for every authentication failure.
func writeChallenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "Could not validate credentials")
}

// writeTaskError maps task and subtask service errors to status codes. The
// two not-found messages depend on which stage of the ownership check failed.
func writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSubtaskNotFound):
		writeError(w, http.StatusNotFound, "Subtask not found")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
