package httpapi

import (
	"encoding/json"
	"net/http"

	"predictd/internal/predictor"
	"predictd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps predictor failures onto HTTP status codes. Upstream
// trouble of any kind surfaces as a bad gateway: the service is fine, the
// provider is not.
func statusForError(err error) int {
	switch {
	case predictor.IsInvalidRequest(err):
		return http.StatusBadRequest
	case predictor.IsMissingCredential(err):
		return http.StatusUnauthorized
	case predictor.IsUnknownModel(err):
		return http.StatusNotFound
	case predictor.IsTransportFailure(err),
		predictor.IsRejectedByProvider(err),
		predictor.IsEmptyResponse(err):
		return http.StatusBadGateway
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeError writes a consistent JSON error payload.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: code})
}

// writePredictorError maps err through the failure taxonomy.
func writePredictorError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), predictor.ErrorCode(err), err.Error())
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeError(w, http.StatusInternalServerError, predictor.CodeInternal, "failed to encode response")
	}
}
