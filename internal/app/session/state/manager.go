package state

import (
	"sync"
	"time"

	"github.com/osa030/padbox/internal/app/keymap"
)

// Manager manages session state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Session identity
	sessionID string

	// Session lifecycle
	phase     Phase
	startTime time.Time
	endTime   time.Time

	// Input statistics
	keyCount int
	lastKey  keymap.Key
	lastAt   time.Time
}

// Info is a snapshot of the session state.
type Info struct {
	SessionID string
	Phase     Phase
	StartTime time.Time
	EndTime   time.Time
	KeyCount  int
	LastKey   keymap.Key
	LastKeyAt time.Time
}

// New creates a new state manager.
func New(sessionID string) *Manager {
	return &Manager{
		sessionID: sessionID,
		phase:     PhaseWaiting,
	}
}

// GetPhase returns the current session phase.
func (m *Manager) GetPhase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// GetSessionID returns the session ID.
func (m *Manager) GetSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// Start records the start time and resets the phase to waiting.
func (m *Manager) Start(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = PhaseWaiting
	m.startTime = now
	m.endTime = time.Time{}
}

// RecordKey counts a handled key. The first key activates the session.
func (m *Manager) RecordKey(key keymap.Key, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseTerminated {
		return
	}
	m.phase = PhaseActive
	m.keyCount++
	m.lastKey = key
	m.lastAt = now
}

// Terminate marks the session as ended.
func (m *Manager) Terminate(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseTerminated {
		return
	}
	m.phase = PhaseTerminated
	m.endTime = now
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Info{
		SessionID: m.sessionID,
		Phase:     m.phase,
		StartTime: m.startTime,
		EndTime:   m.endTime,
		KeyCount:  m.keyCount,
		LastKey:   m.lastKey,
		LastKeyAt: m.lastAt,
	}
}

// Uptime returns how long the session ran, or has run so far.
func (m *Manager) Uptime(now time.Time) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.startTime.IsZero() {
		return 0
	}
	if !m.endTime.IsZero() {
		return m.endTime.Sub(m.startTime)
	}
	return now.Sub(m.startTime)
}
