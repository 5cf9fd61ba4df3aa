package service

import "time"

// Clock supplies the current time for deadline checks. Tests swap in a fixed
// implementation.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// DeadlineFromParts assembles an epoch deadline from the calendar fields the
// admin form posts. Seconds are always zero.
func DeadlineFromParts(year, month, day, hour, minute int) int64 {
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local).Unix()
}
