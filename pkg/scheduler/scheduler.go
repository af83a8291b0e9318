package scheduler

import "time"

// Timer is a pending delayed callback.
type Timer interface {
	// Stop prevents the callback from firing.
	// Returns false if the callback already fired or the timer was stopped.
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// Real schedules callbacks on the wall clock.
type Real struct{}

// NewReal returns a scheduler backed by time.AfterFunc.
func NewReal() Real {
	return Real{}
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (Real) Now() time.Time {
	return time.Now()
}
