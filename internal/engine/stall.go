package engine

import "time"

// DefaultStallTimeout ends a run when no file has been copied for this long.
const DefaultStallTimeout = 30 * time.Second

// StallMonitor measures time since the last successful copy.
type StallMonitor struct {
	now  func() time.Time
	last time.Time
}

// NewStallMonitor returns a monitor reading time from now, or from
// time.Now when now is nil.
func NewStallMonitor(now func() time.Time) *StallMonitor {
	if now == nil {
		now = time.Now
	}
	return &StallMonitor{now: now}
}

// Start records the reference instant.
func (m *StallMonitor) Start() { m.last = m.now() }

// Reset restarts the window after a successful copy.
func (m *StallMonitor) Reset() { m.last = m.now() }

// Since returns the time elapsed since the last Start or Reset.
func (m *StallMonitor) Since() time.Duration { return m.now().Sub(m.last) }

// TimedOut reports whether more than limit has passed since the last reset.
func (m *StallMonitor) TimedOut(limit time.Duration) bool {
	return m.Since() > limit
}
