package timeutil

import "time"

// StartOfDay returns midnight (00:00:00) of the given day in the same timezone
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the given day (23:59:59.999999999)
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBack returns the range from the start of the day n days before now to the
// end of today. DaysBack(now, 0) is today only.
func DaysBack(now time.Time, n int) (start, end time.Time) {
	if n < 0 {
		n = 0
	}
	return StartOfDay(now.AddDate(0, 0, -n)), EndOfDay(now)
}

// LastNDays returns the N complete days ending today (inclusive).
// LastNDays(now, 1) is today only.
func LastNDays(now time.Time, n int) (start, end time.Time) {
	return DaysBack(now, n-1)
}

// IsInRange checks if the given time t falls within the range [start, end] (inclusive)
func IsInRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
