// Package clock abstracts the timers the submission lifecycle depends on:
// the simulated request latency and the error panel lifetime. Production code
// uses Real; tests drive a Fake deterministically with Advance.
package clock

import "time"

// Clock is the subset of the time package used by the pipeline.
type Clock interface {
	Now() time.Time
	// After delivers the current time once d has elapsed. If d <= 0 the
	// channel is ready immediately.
	After(d time.Duration) <-chan time.Time
	// AfterFunc calls f once d has elapsed. Stop on the returned Timer
	// cancels a pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a cancellable scheduled call.
type Timer struct {
	stop func() bool
}

// Stop prevents the timer from firing. It reports false when the timer has
// already fired or was stopped before.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{stop: timer.Stop}
}
