package util

import (
	"time"
)

// DayFormat is the canonical day key used across storage and the API.
const DayFormat = "2006-01-02"

// ParseDay parses a YYYY-MM-DD day key. Returns (t, true) if it parsed.
func ParseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// FormatDay renders a time as its UTC day key.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Today is the current UTC day key.
func Today() string {
	return FormatDay(time.Now())
}

// DaysAgo is the UTC day key n days before now.
func DaysAgo(n int) string {
	return FormatDay(time.Now().AddDate(0, 0, -n))
}

// NextDay is the day key immediately after s. Invalid input echoes back.
func NextDay(s string) string {
	t, ok := ParseDay(s)
	if !ok {
		return s
	}
	return FormatDay(t.AddDate(0, 0, 1))
}

// ValidDay reports whether s is a well-formed day key.
func ValidDay(s string) bool {
	_, ok := ParseDay(s)
	return ok
}
