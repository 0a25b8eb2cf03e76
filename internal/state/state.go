// Package state provides thread-safe session state for the application.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-telescope/internal/present"
	"github.com/litescript/ls-telescope/internal/telescope"
)

// Entry is one completed calculation.
type Entry struct {
	RequestID  string
	Generation uint64
	Timestamp  time.Time
	Duration   time.Duration
	Selection  telescope.DateSelection
	Result     telescope.CalculationResult
	View       present.ResultView
}

// Manager holds the transient display state. Nothing is persisted.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current      *Entry
	lastError    error
	inFlight     bool
	lastDuration time.Duration

	// Newest generation that has settled, success or failure
	settled uint64

	// History (ring buffer)
	history    []Entry
	maxHistory int
	writeAt    int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistory int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistory: 20,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Manager{
		maxHistory: maxHistory,
		history:    make([]Entry, 0, maxHistory),
	}
}

// Begin marks a calculation as in flight.
func (m *Manager) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = true
}

// Complete records a successful calculation. It returns false, and changes
// nothing, when a newer generation has already settled.
func (m *Manager) Complete(e Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.Generation < m.settled {
		return false
	}
	m.settled = e.Generation
	m.inFlight = false
	m.lastError = nil
	m.lastDuration = e.Duration

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	cur := e
	m.current = &cur
	m.addHistory(e)
	return true
}

// Fail records a failed calculation. The current result is kept. It returns
// false when a newer generation has already settled.
func (m *Manager) Fail(gen uint64, d time.Duration, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen < m.settled {
		return false
	}
	m.settled = gen
	m.inFlight = false
	m.lastError = err
	m.lastDuration = d
	return true
}

// Cancel clears the in-flight mark without recording anything.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
}

// addHistory adds an entry to the ring buffer.
func (m *Manager) addHistory(e Entry) {
	if len(m.history) < m.maxHistory {
		m.history = append(m.history, e)
	} else {
		m.history[m.writeAt] = e
		m.writeAt = (m.writeAt + 1) % m.maxHistory
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Current      *Entry
	LastError    error
	InFlight     bool
	LastDuration time.Duration
	History      []Entry
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cur *Entry
	if m.current != nil {
		c := *m.current
		cur = &c
	}

	return Snapshot{
		Current:      cur,
		LastError:    m.lastError,
		InFlight:     m.inFlight,
		LastDuration: m.lastDuration,
		History:      m.historyOrdered(),
	}
}

// historyOrdered returns history in chronological order.
func (m *Manager) historyOrdered() []Entry {
	if len(m.history) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.history) < m.maxHistory {
		result := make([]Entry, len(m.history))
		copy(result, m.history)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Entry, m.maxHistory)
	for i := 0; i < m.maxHistory; i++ {
		idx := (m.writeAt + i) % m.maxHistory
		result[i] = m.history[idx]
	}
	return result
}

// Recent returns the last n entries, newest last.
func (m *Manager) Recent(n int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.historyOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// HasResult returns true once at least one calculation has succeeded.
func (m *Manager) HasResult() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
