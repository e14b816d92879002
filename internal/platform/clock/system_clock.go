package clock

import (
	"time"

	clockport "github.com/rideshare-app/rideshare-client/internal/ports/out/clock"
)

// SystemClock provides wall-clock time and real timers.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (SystemClock) NewTimer(d time.Duration) clockport.Timer {
	return systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) C() <-chan time.Time { return st.t.C }
func (st systemTimer) Stop() bool          { return st.t.Stop() }
