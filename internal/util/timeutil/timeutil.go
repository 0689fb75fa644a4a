// Package timeutil has the small time helpers shared by handlers.
package timeutil

import "time"

// ValidTimezone reports whether name is an IANA zone the host tzdata
// can resolve. Empty and "Local" are rejected; stored timezones must
// be explicit.
func ValidTimezone(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// AcademicYearBounds returns the [start, end) Unix-second range of the
// academic year containing t: September 1st through the next
// September 1st, in UTC.
func AcademicYearBounds(t time.Time) (int64, int64) {
	t = t.UTC()
	year := t.Year()
	if t.Month() < time.September {
		year--
	}
	start := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.September, 1, 0, 0, 0, 0, time.UTC)
	return start.Unix(), end.Unix()
}
