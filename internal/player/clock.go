package player

import "time"

// Timer is a pending callback created by a Clock
type Timer interface {
	Stop() bool
}

// Clock schedules the engine's display timers
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns a Clock backed by the time package
func SystemClock() Clock {
	return systemClock{}
}
