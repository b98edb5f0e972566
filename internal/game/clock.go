package game

import "time"

// Timer is a scheduled callback that can be cancelled. Stop reports whether
// the call was stopped before it fired; a fired callback must still check the
// session generation before acting.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so engine tests can drive timers deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{time.AfterFunc(d, f)}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return systemClock{} }
