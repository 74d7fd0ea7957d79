package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"predictd/internal/predictor"
	"predictd/pkg/types"
)

// decodeJSON enforces the JSON content type and body size limit before
// decoding into dst. It writes the error response itself and reports
// whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, predictor.CodeInvalidRequest, "Content-Type must be application/json")
		return false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, predictor.CodeInvalidRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, predictor.CodeInvalidRequest, "invalid JSON body")
		return false
	}
	return true
}

// handleInput records the current text and lets the session decide
// whether a prediction fires. The response snapshot tells the client
// what happened: requesting means one did.
//
//	POST /v1/input {"text": "..."}
func handleInput(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.InputRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		snap, _ := svc.SetText(req.Text)
		writeJSON(w, snap)
	}
}

// handleRefresh forces a prediction for the current text. No body.
//
//	POST /v1/refresh
func handleRefresh(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, _ := svc.Refresh()
		writeJSON(w, snap)
	}
}

// handleState returns the full session snapshot.
//
//	GET /v1/state
func handleState(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Snapshot())
	}
}

// handleHistory returns retained predictions, oldest first.
//
//	GET /v1/history
func handleHistory(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := svc.History()
		if entries == nil {
			entries = []types.HistoryEntry{}
		}
		writeJSON(w, types.HistoryResponse{Entries: entries})
	}
}

// handleGetSettings returns the active settings.
//
//	GET /v1/settings
func handleGetSettings(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Snapshot().Settings)
	}
}

// handlePutSettings replaces the settings. Out-of-range knobs are
// clamped rather than rejected; only nonsense is an error.
//
//	PUT /v1/settings {"auto_update":true,"top_n":5,"temperature":0.3}
func handlePutSettings(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.Settings
		if !decodeJSON(w, r, &req) {
			return
		}
		snap, _, err := svc.UpdateSettings(req)
		if err != nil {
			writePredictorError(w, err)
			return
		}
		writeJSON(w, snap)
	}
}
