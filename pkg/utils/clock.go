package utils

import "time"

// SystemClock reads the wall clock in a fixed location
type SystemClock struct {
	Location *time.Location
}

// Today returns midnight of the current date
func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return TruncateDay(time.Now().In(loc))
}

// FixedClock always reports the same date
type FixedClock struct {
	Date time.Time
}

// Today returns the fixed date at midnight
func (c FixedClock) Today() time.Time {
	return TruncateDay(c.Date)
}

// TruncateDay drops the time of day, keeping the location
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
