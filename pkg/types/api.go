package types

// PredictRequest is the payload for the stateless POST /v1/predict.
type PredictRequest struct {
	// Text to predict the next token for. Required, non-empty after trimming.
	// example: The mysterious door slowly opened to reveal
	Text string `json:"text" example:"The mysterious door slowly opened to reveal"`
	// Sampling temperature; 0 or omitted uses the server default (0.3).
	// example: 0.3
	Temperature float64 `json:"temperature,omitempty" example:"0.3"`
	// Number of candidates to return, clamped to [1,10]; 0 uses the default (5).
	// example: 3
	TopN int `json:"top_n,omitempty" example:"3"`
	// Optional model profile id. If empty, the server default is used.
	// example: gpt-4o
	Model string `json:"model,omitempty" example:"gpt-4o"`
}

// InputRequest carries the current text for POST /v1/input.
type InputRequest struct {
	// Full current contents of the input area. May be empty to clear.
	// example: Once upon a time
	Text string `json:"text" example:"Once upon a time"`
}

// CredentialRequest sets the upstream API key at runtime.
type CredentialRequest struct {
	// API key entered through the interface.
	// example: sk-abcdef0123456789
	APIKey string `json:"api_key" example:"sk-abcdef0123456789"`
}

// CredentialStatus reports whether a credential is resolvable, without
// ever echoing the raw key.
type CredentialStatus struct {
	// True when any credential source yields a key.
	// example: true
	Present bool `json:"present" example:"true"`
	// Which source won: runtime, env, config, or file.
	// example: env
	Source string `json:"source,omitempty" example:"env"`
	// Masked rendering of the key (first8...last4, or *** for short keys).
	// example: sk-abcde...6789
	Masked string `json:"masked,omitempty" example:"sk-abcde...6789"`
}

// Snapshot is the full session view returned by the session endpoints.
type Snapshot struct {
	// Session state: idle, awaiting_input, requesting, displaying, or failed.
	// example: displaying
	State string `json:"state" example:"displaying"`
	// Current input text.
	// example: The weather today is
	Text string `json:"text" example:"The weather today is"`
	// Current session settings.
	Settings Settings `json:"settings"`
	// Most recent successful result; retained across later failures.
	Result *PredictionResult `json:"result,omitempty"`
	// Last error, present only in the failed state.
	Error *PredictionFailure `json:"error,omitempty"`
	// Number of retained history entries.
	// example: 4
	HistoryLen int `json:"history_len" example:"4"`
}

// PredictionFailure describes the last failed prediction.
type PredictionFailure struct {
	// Taxonomy code: missing_credential, transport_failure,
	// rejected_by_provider, or empty_response.
	// example: transport_failure
	Code string `json:"code" example:"transport_failure"`
	// Human-readable message, surfaced verbatim.
	// example: connection refused
	Message string `json:"message" example:"connection refused"`
}

// HistoryResponse wraps the retained history, oldest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// ModelsResponse wraps the configured model profiles.
type ModelsResponse struct {
	Models []Profile `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// Machine-readable error code.
	// example: invalid_request
	Code string `json:"code" example:"invalid_request"`
}

// StatusResponse is returned by GET /v1/status.
type StatusResponse struct {
	// Overall session state.
	// example: displaying
	State string `json:"state" example:"displaying"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total predictions attempted since start.
	// example: 42
	PredictionsTotal uint64 `json:"predictions_total" example:"42"`
	// Predictions that returned a result.
	// example: 40
	PredictionsOK uint64 `json:"predictions_ok" example:"40"`
	// Predictions that failed.
	// example: 2
	PredictionsFailed uint64 `json:"predictions_failed" example:"2"`
	// Retained history length.
	// example: 10
	HistoryLen int `json:"history_len" example:"10"`
	// True when a credential is currently resolvable.
	// example: true
	CredentialPresent bool `json:"credential_present" example:"true"`
	// Host CPU utilization percent at the time of the request.
	// example: 12.5
	CPUPercent float64 `json:"cpu_percent" example:"12.5"`
	// Host memory utilization percent.
	// example: 48.2
	MemPercent float64 `json:"mem_percent" example:"48.2"`
	// Host memory used, GiB.
	// example: 7.7
	MemUsedGB float64 `json:"mem_used_gb" example:"7.7"`
	// Host memory total, GiB.
	// example: 16.0
	MemTotalGB float64 `json:"mem_total_gb" example:"16.0"`
}
