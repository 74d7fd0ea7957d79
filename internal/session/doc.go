// Package session owns the interactive prediction session: the current
// input text, the refresh-triggering policy, the last result and error,
// the bounded prediction history, and the event stream consumed by the
// UI layers. It is structured into small files by concern:
//
//   - session.go: core Manager type, Config, constructor, simple getters.
//   - types.go: session states and the Requester boundary.
//   - trigger.go: SetText/Refresh trigger policy and completion handling.
//   - history.go: fixed-capacity FIFO ring of past predictions.
//   - settings.go: user-tunable settings with clamping.
//   - events.go: event types, publisher hook, and subscriber fan-out.
//   - status_report.go: status projection for the status endpoint.
//   - metrics.go: Prometheus collectors for prediction outcomes.
//
// External packages should treat this package as the state owner and use
// public methods only (New, SetText, Refresh, UpdateSettings, Snapshot,
// History, Subscribe, Status, Close). At most one prediction is in flight
// at a time, enforced by the requesting state rather than a lock held
// across the call.
package session
