package clock

import "time"

// Clock provides time and timers to the application.
// Using an interface enables deterministic tests via a controllable implementation.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is a single-shot timer. Components create a fresh timer per scheduling
// generation and Stop the superseded one, rather than reusing timers.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}
