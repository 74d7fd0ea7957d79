package session

import (
	"github.com/google/uuid"

	"predictd/pkg/types"
)

// Event names emitted by the session.
const (
	// EventRequestStarted fires when a prediction call is issued.
	EventRequestStarted = "request_started"
	// EventPredictionSucceeded fires when a call resolves with a result.
	EventPredictionSucceeded = "prediction_succeeded"
	// EventPredictionFailed fires when a call resolves with an error.
	EventPredictionFailed = "prediction_failed"
	// EventSettingsUpdated fires when the settings are replaced.
	EventSettingsUpdated = "settings_updated"
	// EventStateChanged fires on passive transitions, such as clearing
	// the text.
	EventStateChanged = "state_changed"
	// EventSnapshot is the synthetic event sent to a subscriber on
	// connect; the session itself never publishes it.
	EventSnapshot = "snapshot"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind loses events rather than stalling the session.
const subscriberBuffer = 8

// Event is a session notification carrying the state that resulted from
// the transition, so consumers never need a follow-up snapshot call.
type Event struct {
	Name     string         `json:"name"`
	Snapshot types.Snapshot `json:"snapshot"`
}

// EventPublisher receives session events. Implementations must be safe
// for concurrent use.
type EventPublisher interface {
	Publish(e Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// Subscribe registers a listener and returns its id together with the
// event channel. The channel is closed by Unsubscribe or Close.
func (m *Manager) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)
	m.mu.Lock()
	if m.closed {
		close(ch)
	} else {
		m.subs[id] = ch
	}
	m.mu.Unlock()
	return id, ch
}

// Unsubscribe detaches a listener and closes its channel. Unknown ids are
// ignored.
func (m *Manager) Unsubscribe(id string) {
	m.mu.Lock()
	if ch, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()
}

// publish fans an event out to the configured publisher and all
// subscribers. Sends never block; a full subscriber drops the event.
func (m *Manager) publish(e Event) {
	m.pub.Publish(e)
	m.mu.RLock()
	for _, ch := range m.subs {
		select {
		case ch <- e:
		default:
		}
	}
	m.mu.RUnlock()
}
