package session

import (
	"strings"

	"predictd/internal/predictor"
	"predictd/pkg/types"
)

// DefaultSettings returns the settings a fresh session starts with:
// auto-update on, the default candidate count, the default temperature,
// and the requester's default model.
func DefaultSettings() types.Settings {
	return types.Settings{
		AutoUpdate:  true,
		TopN:        predictor.DefaultTopN,
		Temperature: predictor.DefaultTemperature,
	}
}

// clampSettings forces the tunables into their valid ranges. A zero
// temperature means "use the default" rather than deterministic sampling.
func clampSettings(s types.Settings) types.Settings {
	if s.TopN < predictor.MinTopN {
		s.TopN = predictor.MinTopN
	}
	if s.TopN > predictor.MaxTopN {
		s.TopN = predictor.MaxTopN
	}
	if s.Temperature == 0 {
		s.Temperature = predictor.DefaultTemperature
	}
	return s
}

// UpdateSettings replaces the session settings. Turning auto-update on
// applies the trigger policy immediately, so text typed while it was off
// gets its prediction without an extra keystroke. It reports whether that
// follow-up request was issued.
func (m *Manager) UpdateSettings(s types.Settings) (types.Snapshot, bool, error) {
	if s.Temperature < 0 {
		return types.Snapshot{}, false, predictor.ErrInvalidRequest("temperature must not be negative")
	}

	m.mu.Lock()
	m.settings = clampSettings(s)

	var issued bool
	if m.settings.AutoUpdate && !m.closed && m.state != StateRequesting {
		if text := m.text; strings.TrimSpace(text) != "" && text != m.lastRequested {
			issued = m.startRequestLocked()
		}
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(Event{Name: EventSettingsUpdated, Snapshot: snap})
	if issued {
		m.publish(Event{Name: EventRequestStarted, Snapshot: snap})
	}
	return snap, issued, nil
}
