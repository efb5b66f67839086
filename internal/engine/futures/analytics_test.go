package futures

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/engine"
)

func TestPremiumPct(t *testing.T) {
	if got := PremiumPct(100, 101); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1.0%% premium, got %v", got)
	}
	if got := PremiumPct(100, 99); math.Abs(got+1.0) > 1e-9 {
		t.Fatalf("expected -1.0%% discount, got %v", got)
	}
	if got := PremiumPct(0, 101); got != 0 {
		t.Fatalf("zero spot must resolve to 0, got %v", got)
	}
}

func TestAnnualizeFunding(t *testing.T) {
	// 0.01% per event, 3 events a day: 0.0001 * 3 * 365 * 100 = 10.95%
	if got := AnnualizeFunding(0.0001, 3); math.Abs(got-10.95) > 1e-9 {
		t.Fatalf("expected 10.95, got %v", got)
	}
}

func snap(date string, spot, fut, funding float64) models.FuturesSnapshot {
	return Snapshot("BTC", date, spot, fut, funding, 1_000_000, 3)
}

func TestFlagsPremiumAboveThreshold(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	// 1.5% premium against a 0.5% alert line, above 2x: high severity
	flags := a.Flags([]models.FuturesSnapshot{snap("2024-01-01", 100, 101.5, 0)})
	if len(flags) != 1 {
		t.Fatalf("expected one flag, got %d", len(flags))
	}
	if flags[0].Kind != models.AlertHighFuturesPremium || flags[0].Severity != models.SeverityHigh {
		t.Fatalf("unexpected flag %+v", flags[0])
	}
}

func TestFlagsModestPremiumIsMedium(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	flags := a.Flags([]models.FuturesSnapshot{snap("2024-01-01", 100, 100.7, 0)})
	if len(flags) != 1 || flags[0].Severity != models.SeverityMedium {
		t.Fatalf("expected one medium flag, got %+v", flags)
	}
}

func TestFlagsDiscount(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	flags := a.Flags([]models.FuturesSnapshot{snap("2024-01-01", 100, 99.3, 0)})
	if len(flags) != 1 || flags[0].Kind != models.AlertFuturesDiscount {
		t.Fatalf("expected a discount flag, got %+v", flags)
	}
}

func TestFlagsExtremeFunding(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	// 0.0012 per event annualizes to 131.4%, past the 100% line
	flags := a.Flags([]models.FuturesSnapshot{snap("2024-01-01", 100, 100, 0.0012)})
	if len(flags) != 1 {
		t.Fatalf("expected one flag, got %d", len(flags))
	}
	if flags[0].Kind != models.AlertExtremeFunding || flags[0].Severity != models.SeverityHigh {
		t.Fatalf("unexpected flag %+v", flags[0])
	}
}

func TestFlagsExtremeNegativeFundingEscalates(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	// -0.002 annualizes to -219%, beyond 2x the line: critical
	flags := a.Flags([]models.FuturesSnapshot{snap("2024-01-01", 100, 100, -0.002)})
	if len(flags) != 1 {
		t.Fatalf("expected one flag, got %d", len(flags))
	}
	if flags[0].Kind != models.AlertExtremeNegativeFunding || flags[0].Severity != models.SeverityCritical {
		t.Fatalf("unexpected flag %+v", flags[0])
	}
}

func TestFlagsBackwardationPersistence(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	snaps := []models.FuturesSnapshot{
		snap("2024-01-01", 100, 99.9, 0),
		snap("2024-01-02", 100, 99.8, 0),
		snap("2024-01-03", 100, 99.9, 0),
	}
	flags := a.Flags(snaps)
	found := false
	for _, f := range flags {
		if f.Kind == models.AlertBackwardation {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a backwardation flag, got %+v", flags)
	}
}

func TestFlagsContangoRequiresRisingPremium(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	rising := []models.FuturesSnapshot{
		snap("2024-01-01", 100, 100.1, 0),
		snap("2024-01-02", 100, 100.2, 0),
		snap("2024-01-03", 100, 100.3, 0),
	}
	flags := a.Flags(rising)
	found := false
	for _, f := range flags {
		if f.Kind == models.AlertContango {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a contango flag, got %+v", flags)
	}

	falling := []models.FuturesSnapshot{
		snap("2024-01-01", 100, 100.3, 0),
		snap("2024-01-02", 100, 100.2, 0),
		snap("2024-01-03", 100, 100.1, 0),
	}
	for _, f := range a.Flags(falling) {
		if f.Kind == models.AlertContango {
			t.Fatalf("narrowing premium must not flag contango")
		}
	}
}

func TestFlagsEmptyInput(t *testing.T) {
	a := NewAnalyzer(engine.Defaults())
	if flags := a.Flags(nil); flags != nil {
		t.Fatalf("expected nil for empty input, got %+v", flags)
	}
}

func TestLiquidations(t *testing.T) {
	est := Liquidations("BTC", 100_000, []int{10, 25, 50, 100})
	if !est.Estimate {
		t.Fatalf("output must be labeled an estimate")
	}
	if len(est.Zones) != 4 {
		t.Fatalf("expected 4 zones, got %d", len(est.Zones))
	}
	z := est.Zones[0]
	if z.Leverage != 10 {
		t.Fatalf("expected leverage 10 first, got %d", z.Leverage)
	}
	if math.Abs(z.LongZone-90_000) > 1e-6 || math.Abs(z.ShortZone-110_000) > 1e-6 {
		t.Fatalf("10x zones wrong: long=%v short=%v", z.LongZone, z.ShortZone)
	}
}

func TestLiquidationsSkipsNonPositiveLeverage(t *testing.T) {
	est := Liquidations("BTC", 100, []int{0, -5, 10})
	if len(est.Zones) != 1 || est.Zones[0].Leverage != 10 {
		t.Fatalf("expected only the 10x tier, got %+v", est.Zones)
	}
}
