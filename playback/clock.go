package playback

import "time"

// Clock schedules the controls countdown.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending countdown.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
