package httpapi

import "sync/atomic"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
// Default remains 1 MiB for backward compatibility.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// predictTimeout bounds a single /v1/predict call.
// Zero means no additional timeout beyond the upstream client timeout.
var predictTimeout = int64(0) // seconds

// SetPredictTimeoutSeconds sets the predict timeout in seconds (0 disables).
func SetPredictTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	predictTimeout = sec
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}

// Event stream limiting. Each open /v1/events connection holds a server
// goroutine, so the count is capped.
var (
	maxEventStreams    int64 = 64
	activeEventStreams atomic.Int64
)

// SetMaxEventStreams caps concurrent event stream connections.
func SetMaxEventStreams(n int64) {
	if n <= 0 {
		n = 64
	}
	maxEventStreams = n
}

func acquireEventStream() bool {
	if activeEventStreams.Add(1) > maxEventStreams {
		activeEventStreams.Add(-1)
		return false
	}
	return true
}

func releaseEventStream() {
	activeEventStreams.Add(-1)
}
