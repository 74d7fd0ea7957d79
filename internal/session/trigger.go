package session

import (
	"context"
	"strings"
	"time"

	"predictd/pkg/types"
)

// SetText records the current input text and applies the auto-update
// policy: a request is issued when auto-update is on, the text is
// non-empty, it differs from the text of the last issued request, and no
// request is already in flight. It reports whether a request was started.
func (m *Manager) SetText(text string) (types.Snapshot, bool) {
	m.mu.Lock()
	prev := m.state
	m.text = text

	var issued bool
	switch {
	case m.closed:
	case m.state == StateRequesting:
		// In flight: the change is recorded and picked up on completion.
	case strings.TrimSpace(text) == "":
		m.state = m.restingStateLocked()
	case m.settings.AutoUpdate && text != m.lastRequested:
		issued = m.startRequestLocked()
	case m.state == StateIdle:
		m.state = StateAwaitingInput
	}

	snap := m.snapshotLocked()
	changed := m.state != prev
	m.mu.Unlock()

	if issued {
		m.publish(Event{Name: EventRequestStarted, Snapshot: snap})
	} else if changed {
		m.publish(Event{Name: EventStateChanged, Snapshot: snap})
	}
	return snap, issued
}

// Refresh issues a request for the current text regardless of whether it
// matches the last issued request. It still refuses to stack a second
// in-flight call and never fires for empty text.
func (m *Manager) Refresh() (types.Snapshot, bool) {
	m.mu.Lock()
	var issued bool
	if !m.closed && m.state != StateRequesting && strings.TrimSpace(m.text) != "" {
		issued = m.startRequestLocked()
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if issued {
		m.publish(Event{Name: EventRequestStarted, Snapshot: snap})
	}
	return snap, issued
}

// startRequestLocked transitions to requesting and launches the call in
// the background. Callers must hold mu and have checked the guards.
func (m *Manager) startRequestLocked() bool {
	text := m.text
	m.state = StateRequesting
	m.lastRequested = text
	m.predTotal++
	req := types.PredictRequest{
		Text:        text,
		Temperature: m.settings.Temperature,
		TopN:        m.settings.TopN,
		Model:       m.settings.Model,
	}
	go m.run(req)
	return true
}

// run performs one prediction call. There is no cancellation path: a
// stale call resolves against the transport timeout and its outcome is
// applied whenever it lands.
func (m *Manager) run(req types.PredictRequest) {
	start := time.Now()
	res, err := m.pred.Predict(context.Background(), req)
	m.complete(req, res, err, time.Since(start))
}

// complete applies the outcome of a resolved call and, when auto-update
// is on and the text moved on while the call was in flight, issues the
// follow-up request that was deferred by the in-flight guard.
func (m *Manager) complete(req types.PredictRequest, res *types.PredictionResult, err error, took time.Duration) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	var name string
	if err != nil {
		m.state = StateFailed
		m.failure = failureFor(err)
		m.predFailed++
		name = EventPredictionFailed
		observePrediction(m.failure.Code, took)
		m.log.Warn().
			Err(err).
			Str("code", m.failure.Code).
			Dur("took", took).
			Msg("prediction failed")
	} else {
		m.state = StateDisplaying
		m.result = res
		m.failure = nil
		m.predOK++
		m.history.push(newHistoryEntry(req.Text, res.Candidates))
		historyEntries.Set(float64(m.history.len()))
		name = EventPredictionSucceeded
		observePrediction(outcomeOK, took)
		m.log.Debug().
			Str("id", res.ID).
			Int("candidates", len(res.Candidates)).
			Dur("took", took).
			Msg("prediction succeeded")
	}
	if strings.TrimSpace(m.text) == "" {
		// Text was cleared while the call was in flight.
		m.state = m.restingStateLocked()
	}
	snap := m.snapshotLocked()

	var followUp bool
	if m.settings.AutoUpdate && strings.TrimSpace(m.text) != "" && m.text != m.lastRequested {
		followUp = m.startRequestLocked()
	}
	var followSnap types.Snapshot
	if followUp {
		followSnap = m.snapshotLocked()
	}
	m.mu.Unlock()

	m.publish(Event{Name: name, Snapshot: snap})
	if followUp {
		m.publish(Event{Name: EventRequestStarted, Snapshot: followSnap})
	}
}

// restingStateLocked is the state for empty text: idle when nothing is
// retained on screen, awaiting input when a result or error still is.
func (m *Manager) restingStateLocked() State {
	if m.result == nil && m.failure == nil {
		return StateIdle
	}
	return StateAwaitingInput
}
