package sentiment

import "time"

type (
	// Clock schedules the countdown ticks and the delay between cycles.
	Clock interface {
		NewTimer(d time.Duration) Timer
	}

	Timer interface {
		C() <-chan time.Time
		Stop() bool
	}
)

// RealClock is backed by the time package.
type RealClock struct{}

func (RealClock) NewTimer(d time.Duration) Timer {
	return realTimer{time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (t realTimer) C() <-chan time.Time { return t.t.C }
func (t realTimer) Stop() bool          { return t.t.Stop() }
