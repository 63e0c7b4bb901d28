package report

import "time"

// DateLayout is the wire format of Date filter values
const DateLayout = "2006-01-02"

// FormatDate renders t as a Date filter value
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddMonths shifts t by n calendar months. When the target month is
// shorter, the day is clamped to its last day.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())

	last := daysIn(first.Year(), first.Month(), t.Location())
	if d > last {
		d = last
	}

	h, mi, s := t.Clock()
	return time.Date(first.Year(), first.Month(), d, h, mi, s, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
