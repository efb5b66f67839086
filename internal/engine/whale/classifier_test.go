package whale

import (
	"testing"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/engine"
)

func TestClassifyTiers(t *testing.T) {
	th := engine.Defaults().Whale

	cases := []struct {
		value float64
		want  Class
		ok    bool
	}{
		{499_999, "", false},
		{500_000, ClassSmall, true},
		{999_999, ClassSmall, true},
		{1_000_000, ClassMedium, true},
		{4_999_999, ClassMedium, true},
		{5_000_000, ClassLarge, true},
		{10_000_000, ClassMega, true},
		{250_000_000, ClassMega, true},
	}
	for _, c := range cases {
		got, ok := Classify(c.value, th)
		if ok != c.ok || got != c.want {
			t.Fatalf("Classify(%v) = (%q, %v), want (%q, %v)", c.value, got, ok, c.want, c.ok)
		}
	}
}

func TestClassSeverity(t *testing.T) {
	cases := []struct {
		class Class
		want  models.Severity
	}{
		{ClassSmall, models.SeverityLow},
		{ClassMedium, models.SeverityMedium},
		{ClassLarge, models.SeverityHigh},
		{ClassMega, models.SeverityCritical},
	}
	for _, c := range cases {
		if got := c.class.Severity(); got != c.want {
			t.Fatalf("%s severity = %s, want %s", c.class, got, c.want)
		}
	}
}
