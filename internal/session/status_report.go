package session

import (
	"time"

	"predictd/pkg/types"
)

// Status reports session health for the status endpoint. Host-level
// fields (CPU, memory, credential presence) are filled in by the caller.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return types.StatusResponse{
		State:             string(m.state),
		UptimeSeconds:     int64(time.Since(m.started).Seconds()),
		ServerTimeUnix:    time.Now().Unix(),
		PredictionsTotal:  m.predTotal,
		PredictionsOK:     m.predOK,
		PredictionsFailed: m.predFailed,
		HistoryLen:        m.history.len(),
	}
}
