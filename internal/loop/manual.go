package loop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by an explicit clock. Callbacks run synchronously
// inside Advance, which makes time-based behavior deterministic in tests.
type Manual struct {
	now     time.Duration
	seq     int
	pending []*manualTimer
}

// NewManual returns a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	m   *Manual
	at  time.Duration
	seq int
	fn  func()
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	for i, p := range t.m.pending {
		if p == t {
			t.m.pending = append(t.m.pending[:i], t.m.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of scheduled callbacks that have not fired.
func (m *Manual) Pending() int {
	return len(m.pending)
}

// Advance moves the clock forward by d, running every callback that comes due
// in time order, including callbacks scheduled by earlier ones.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		next.Stop()
		m.now = next.at
		next.fn()
	}
	m.now = target
}

// Drain runs callbacks until none remain or limit callbacks have run.
func (m *Manual) Drain(limit int) {
	for i := 0; i < limit && len(m.pending) > 0; i++ {
		next := m.nextDue(m.latest())
		next.Stop()
		m.now = next.at
		next.fn()
	}
}

func (m *Manual) latest() time.Duration {
	var last time.Duration
	for _, p := range m.pending {
		if p.at > last {
			last = p.at
		}
	}
	return last
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	due := make([]*manualTimer, 0, len(m.pending))
	for _, p := range m.pending {
		if p.at <= limit {
			due = append(due, p)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}
