package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"predictd/internal/predictor"
	"predictd/pkg/types"
)

// DefaultHistoryCapacity bounds the prediction history. When full, the
// oldest entry is evicted first.
const DefaultHistoryCapacity = 10

// Config carries the tunable dependencies of a session Manager. Zero
// values fall back to sensible defaults in New.
type Config struct {
	// Requester performs the actual prediction calls. Required.
	Requester Requester

	// Settings seeds the user-tunable knobs. The zero value enables
	// auto-update with the default candidate count and temperature.
	Settings types.Settings

	// HistoryCapacity overrides the history ring size. Zero means
	// DefaultHistoryCapacity.
	HistoryCapacity int

	// Publisher receives session events. Nil installs a no-op publisher.
	Publisher EventPublisher

	// Logger is the session logger. The zero value logs nowhere useful,
	// so callers normally pass a configured instance.
	Logger zerolog.Logger
}

// Manager owns all mutable session state. All exported methods are safe
// for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	pred Requester
	pub  EventPublisher
	log  zerolog.Logger

	state         State
	text          string
	lastRequested string
	settings      types.Settings
	result        *types.PredictionResult
	failure       *types.PredictionFailure
	history       *historyRing

	subs map[string]chan Event

	predTotal  uint64
	predOK     uint64
	predFailed uint64

	started time.Time
	closed  bool
}

// New builds a Manager from cfg, applying defaults for unset fields.
func New(cfg Config) *Manager {
	settings := cfg.Settings
	if settings == (types.Settings{}) {
		settings = DefaultSettings()
	} else {
		settings = clampSettings(settings)
	}
	capacity := cfg.HistoryCapacity
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Manager{
		pred:     cfg.Requester,
		pub:      pub,
		log:      cfg.Logger,
		state:    StateIdle,
		settings: settings,
		history:  newHistoryRing(capacity),
		subs:     make(map[string]chan Event),
		started:  time.Now(),
	}
}

// Snapshot returns a copy of the externally visible session state.
func (m *Manager) Snapshot() types.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// History returns the retained prediction history, oldest first.
func (m *Manager) History() []types.HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.entries()
}

// Close marks the session closed and detaches all subscribers. In-flight
// prediction calls are left to resolve against the transport timeout;
// their results are discarded.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

// snapshotLocked builds a Snapshot. Callers must hold mu.
func (m *Manager) snapshotLocked() types.Snapshot {
	snap := types.Snapshot{
		State:      string(m.state),
		Text:       m.text,
		Settings:   m.settings,
		HistoryLen: m.history.len(),
	}
	if m.result != nil {
		r := *m.result
		r.Candidates = append([]types.Candidate(nil), m.result.Candidates...)
		snap.Result = &r
	}
	if m.failure != nil {
		f := *m.failure
		snap.Error = &f
	}
	return snap
}

// failureFor converts a predictor error into its wire form.
func failureFor(err error) *types.PredictionFailure {
	return &types.PredictionFailure{
		Code:    predictor.ErrorCode(err),
		Message: err.Error(),
	}
}
