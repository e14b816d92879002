package clock

import (
	"sync"
	"time"

	clockport "github.com/rideshare-app/rideshare-client/internal/ports/out/clock"
)

// Manual is a controllable clock for deterministic tests. Time only moves when
// Advance is called; due timers fire during the call.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) NewTimer(d time.Duration) clockport.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{
		clk:      m,
		deadline: m.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	if !t.deadline.After(m.now) {
		t.ch <- m.now
		t.fired = true
		return t
	}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves time forward and fires every timer whose deadline has passed.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	remaining := m.timers[:0]
	for _, t := range m.timers {
		if t.deadline.After(m.now) {
			remaining = append(remaining, t)
			continue
		}
		t.fired = true
		t.ch <- m.now
	}
	m.timers = remaining
}

// Timers reports how many timers are pending. Tests use it to wait until the
// component under test has scheduled something before advancing.
func (m *Manual) Timers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

type manualTimer struct {
	clk      *Manual
	deadline time.Time
	ch       chan time.Time
	fired    bool
}

func (t *manualTimer) C() <-chan time.Time { return t.ch }

func (t *manualTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	if t.fired {
		return false
	}
	for i, pending := range t.clk.timers {
		if pending == t {
			t.clk.timers = append(t.clk.timers[:i], t.clk.timers[i+1:]...)
			break
		}
	}
	t.fired = true
	return true
}
