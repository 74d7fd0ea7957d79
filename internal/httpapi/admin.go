package httpapi

import (
	"net/http"

	"predictd/pkg/types"
)

// handleModels lists the configured model profiles.
//
//	GET /v1/models
func handleModels(profiles []types.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: append([]types.Profile(nil), profiles...)})
	}
}

// handleGetCredential reports whether a key is configured and where it
// came from. The key itself never leaves the server unmasked.
//
//	GET /v1/credential
func handleGetCredential(creds CredentialAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, creds.Status())
	}
}

// handlePutCredential installs or clears the runtime key override.
//
//	PUT /v1/credential {"api_key": "sk-..."}
func handlePutCredential(creds CredentialAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CredentialRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		creds.Set(req.APIKey)
		if zlog != nil {
			zlog.Info().Bool("cleared", req.APIKey == "").Msg("runtime credential updated")
		}
		writeJSON(w, creds.Status())
	}
}

// handleStatus merges session counters with host usage and credential
// presence.
//
//	GET /v1/status
func handleStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := deps.Session.Status()
		if deps.Credentials != nil {
			st.CredentialPresent = deps.Credentials.Status().Present
		}
		if deps.Host != nil {
			if hs, err := deps.Host.Sample(); err == nil {
				st.CPUPercent = hs.CPUPercent
				st.MemPercent = hs.MemPercent
				st.MemUsedGB = hs.MemUsedGB
				st.MemTotalGB = hs.MemTotalGB
			}
		}
		writeJSON(w, st)
	}
}
