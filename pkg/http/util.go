package http

import (
	xutil "CoinPulse/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ValidDay reports whether s is a well-formed YYYY-MM-DD day key.
func ValidDay(s string) bool { return xutil.ValidDay(s) }
