package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// NormalizeCoin upper-cases and trims a coin symbol ("btc " -> "BTC").
func NormalizeCoin(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SplitCoins splits a comma-separated coin list, normalizing each entry and
// dropping empties ("btc, eth," -> ["BTC", "ETH"]).
func SplitCoins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := NormalizeCoin(p); c != "" {
			out = append(out, c)
		}
	}
	return out
}
