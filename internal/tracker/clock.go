package tracker

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. Returns false if it already
	// fired or was stopped.
	Stop() bool
}

// Clock abstracts wall-clock time and timer scheduling so the debounce,
// coalescing, and teardown behavior can be tested without real sleeps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NewRealClock returns a Clock backed by the time package.
func NewRealClock() Clock { return realClock{} }
