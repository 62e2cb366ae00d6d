// Package transport provides clocks that fire scheduled playback callbacks.
package transport

import (
	"sort"
	"sync"
)

type entry struct {
	part string
	at   float64
	seq  int
	fn   func()
}

// Manual is a virtual clock that only moves when Advance is called.
// Callbacks run on the goroutine calling Advance.
type Manual struct {
	mu      sync.Mutex
	now     float64
	running bool
	seq     int
	pending []entry
}

// NewManual returns a stopped virtual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time in seconds.
func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// ScheduleAt queues fn to run once the clock reaches at.
func (m *Manual) ScheduleAt(part string, at float64, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.pending = append(m.pending, entry{part: part, at: at, seq: m.seq, fn: fn})
}

// CancelAll drops every queued callback of part.
func (m *Manual) CancelAll(part string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.pending[:0]
	for _, e := range m.pending {
		if e.part != part {
			kept = append(kept, e)
		}
	}
	m.pending = kept
}

func (m *Manual) Start() {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()
}

func (m *Manual) Pause() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

// Stop halts the clock, rewinds it to zero and drops every callback.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.now = 0
	m.pending = nil
}

// Running reports whether the clock is started.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Advance moves the clock forward by d seconds, running due callbacks in
// time order. Callbacks scheduled during Advance run too if they fall due.
// A paused clock does not move.
func (m *Manual) Advance(d float64) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	target := m.now + d
	for {
		e, ok := m.next(target)
		if !ok {
			break
		}
		if e.at > m.now {
			m.now = e.at
		}
		m.mu.Unlock()
		e.fn()
		m.mu.Lock()
		if !m.running {
			m.mu.Unlock()
			return
		}
	}
	m.now = target
	m.mu.Unlock()
}

// next pops the earliest callback due by target. m.mu must be held.
func (m *Manual) next(target float64) (entry, bool) {
	if len(m.pending) == 0 {
		return entry{}, false
	}
	sort.Slice(m.pending, func(i, j int) bool {
		a, b := m.pending[i], m.pending[j]
		if a.at != b.at {
			return a.at < b.at
		}
		return a.seq < b.seq
	})
	e := m.pending[0]
	if e.at > target {
		return entry{}, false
	}
	m.pending = m.pending[1:]
	return e, true
}

// Pending returns the times of part's queued callbacks in order.
func (m *Manual) Pending(part string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []float64
	for _, e := range m.pending {
		if e.part == part {
			out = append(out, e.at)
		}
	}
	sort.Float64s(out)
	return out
}
