package observability

import (
	"sync"
	"time"
)

// DefaultHistoryLimit is the number of attempts a monitor keeps when no limit is given.
const DefaultHistoryLimit = 50

// Attempt is one call to the recipe generator.
type Attempt struct {
	SessionID string        `json:"session_id"`
	Success   bool          `json:"success"`
	Err       string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	At        time.Time     `json:"at"`
}

// Stats summarises the retained history.
type Stats struct {
	Total        int           `json:"total"`
	Failures     int           `json:"failures"`
	MeanDuration time.Duration `json:"mean_duration"`
	LastFailure  *Attempt      `json:"last_failure,omitempty"`
}

// GenerationMonitor records generation attempts in a ring of fixed capacity.
// The oldest attempt is evicted first. Safe for concurrent use.
type GenerationMonitor struct {
	mu    sync.Mutex
	ring  []Attempt
	next  int
	full  bool
	limit int
}

// NewGenerationMonitor creates a monitor keeping at most limit attempts.
// A non-positive limit selects DefaultHistoryLimit.
func NewGenerationMonitor(limit int) *GenerationMonitor {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &GenerationMonitor{ring: make([]Attempt, limit), limit: limit}
}

// Limit returns the capacity of the monitor.
func (m *GenerationMonitor) Limit() int {
	return m.limit
}

// Record appends an attempt, evicting the oldest one when full.
func (m *GenerationMonitor) Record(a Attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ring[m.next] = a
	m.next = (m.next + 1) % m.limit
	if m.next == 0 {
		m.full = true
	}
}

// History returns the retained attempts, oldest first.
func (m *GenerationMonitor) History() []Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history()
}

func (m *GenerationMonitor) history() []Attempt {
	if !m.full {
		return append([]Attempt(nil), m.ring[:m.next]...)
	}
	out := make([]Attempt, 0, m.limit)
	out = append(out, m.ring[m.next:]...)
	return append(out, m.ring[:m.next]...)
}

// Stats computes totals over the retained history.
func (m *GenerationMonitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s Stats
	var sum time.Duration
	for _, a := range m.history() {
		s.Total++
		sum += a.Duration
		if !a.Success {
			s.Failures++
			last := a
			s.LastFailure = &last
		}
	}
	if s.Total > 0 {
		s.MeanDuration = sum / time.Duration(s.Total)
	}
	return s
}
