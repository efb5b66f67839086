package util

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	got, ok := ParseDay("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	if _, ok := ParseDay("10/10/2024"); ok {
		t.Fatalf("expected parse failure")
	}
	if _, ok := ParseDay(""); ok {
		t.Fatalf("expected parse failure on empty")
	}
}

func TestNextDay(t *testing.T) {
	if got := NextDay("2024-12-31"); got != "2025-01-01" {
		t.Fatalf("unexpected next day %s", got)
	}
	if got := NextDay("bogus"); got != "bogus" {
		t.Fatalf("invalid input should echo back, got %s", got)
	}
}

func TestNormalizeCoin(t *testing.T) {
	if got := NormalizeCoin("  btc "); got != "BTC" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSplitCoins(t *testing.T) {
	got := SplitCoins("btc, eth,")
	if len(got) != 2 || got[0] != "BTC" || got[1] != "ETH" {
		t.Fatalf("unexpected %v", got)
	}
}
