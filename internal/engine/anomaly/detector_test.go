package anomaly

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestZScoreZeroDeviationIsZero(t *testing.T) {
	if z := ZScore(100, 100, 0); z != 0 {
		t.Fatalf("expected 0 for zero stddev, got %v", z)
	}
}

func TestZScoreSeriesZeroVarianceWindow(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100
	}
	out := ZScoreSeries(values, 30)
	// z-score of the window's own mean is exactly 0 under zero variance
	for i := 29; i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("expected 0 at %d, got %v", i, out[i])
		}
	}
	for i := 0; i < 29; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("expected undefined before full window at %d", i)
		}
	}
}

func constantBars(n int, netUSD float64) []models.DailyBar {
	bars := make([]models.DailyBar, n)
	for i := range bars {
		bars[i] = models.DailyBar{
			NetVolume:    netUSD / 100,
			NetVolumeUSD: netUSD,
			Close:        100,
		}
	}
	return bars
}

func TestSpikesConstantBaselineOutlier(t *testing.T) {
	// 30 days of exactly $100 net flow, then a $50M day. The outlier sits
	// inside its own window, so the window's deviation is nonzero and the
	// spike scores around z=5.4.
	bars := constantBars(31, 100)
	bars[30].NetVolumeUSD = 50_000_000
	bars[30].NetVolume = 500_000

	d := New(30, 2.5)
	spikes := d.Spikes(bars)
	if len(spikes) != 1 {
		t.Fatalf("expected one spike, got %d", len(spikes))
	}
	s := spikes[0]
	if s.Index != 30 || s.Kind != models.AlertBuyVolumeSpike {
		t.Fatalf("expected a buy spike at index 30, got %+v", s)
	}
	if s.ZScore <= 2.5 {
		t.Fatalf("expected z-score above threshold, got %v", s.ZScore)
	}
	if SpikeSeverity(s.ZScore) != models.SeverityCritical {
		t.Fatalf("expected critical severity for z=%v", s.ZScore)
	}
}

func TestSpikesFullyFlatSeriesIsQuiet(t *testing.T) {
	// every window has zero variance; the z-score guard holds every bar at 0
	bars := constantBars(40, 100)
	d := New(30, 2.5)
	if spikes := d.Spikes(bars); spikes != nil {
		t.Fatalf("expected no spike over a flat series, got %+v", spikes)
	}
}

func TestSpikesFlagMassiveOutlier(t *testing.T) {
	// 31 days: 30 around $100 of net flow, day 31 at $50M
	bars := constantBars(31, 100)
	for i := 0; i < 30; i++ {
		bars[i].NetVolumeUSD = 100 + float64(i%5)*10
	}
	bars[30].NetVolumeUSD = 50_000_000
	bars[30].NetVolume = 500_000

	d := New(30, 2.5)
	spikes := d.Spikes(bars)
	if len(spikes) != 1 {
		t.Fatalf("expected one spike, got %d", len(spikes))
	}
	s := spikes[0]
	if s.Index != 30 {
		t.Fatalf("expected spike at index 30, got %d", s.Index)
	}
	if s.Kind != models.AlertBuyVolumeSpike {
		t.Fatalf("positive net flow should flag a buy spike, got %s", s.Kind)
	}
	if s.ZScore <= 2.5 {
		t.Fatalf("expected z-score far above threshold, got %v", s.ZScore)
	}
	if SpikeSeverity(s.ZScore) != models.SeverityCritical {
		t.Fatalf("expected critical severity for z=%v", s.ZScore)
	}
}

func TestSpikesShortHistoryYieldsNothing(t *testing.T) {
	bars := constantBars(20, 100)
	bars[19].NetVolumeUSD = 50_000_000
	d := New(30, 2.5)
	if spikes := d.Spikes(bars); spikes != nil {
		t.Fatalf("expected no output below the minimum window, got %d", len(spikes))
	}
}

func TestSpikesSellSubtype(t *testing.T) {
	bars := constantBars(31, 100)
	for i := 0; i < 30; i++ {
		bars[i].NetVolumeUSD = 100 + float64(i%5)*10
	}
	bars[30].NetVolumeUSD = -50_000_000
	bars[30].NetVolume = -500_000
	// magnitude is what is scored; the sign picks the subtype
	bars[30].NetVolumeUSD = math.Abs(bars[30].NetVolumeUSD) * -1

	d := New(30, 2.5)
	spikes := d.Spikes(bars)
	if len(spikes) != 1 || spikes[0].Kind != models.AlertSellVolumeSpike {
		t.Fatalf("expected a sell spike, got %+v", spikes)
	}
}

func TestDivergenceBullish(t *testing.T) {
	// price falling, net volume positive: accumulation into weakness
	closes := []float64{100, 99, 98, 97, 96}
	nets := []float64{10, 10, 10, 10, 10}
	signals := Divergence(closes, nets, 4)
	if len(signals) != 1 || signals[0].Kind != models.AlertBullishDivergence {
		t.Fatalf("expected bullish divergence, got %+v", signals)
	}
	if signals[0].Index != 4 {
		t.Fatalf("expected signal at index 4, got %d", signals[0].Index)
	}
}

func TestDivergenceBearish(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104}
	nets := []float64{-10, -10, -10, -10, -10}
	signals := Divergence(closes, nets, 4)
	if len(signals) != 1 || signals[0].Kind != models.AlertBearishDivergence {
		t.Fatalf("expected bearish divergence, got %+v", signals)
	}
}

func TestDivergenceAgreementIsQuiet(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104}
	nets := []float64{10, 10, 10, 10, 10}
	if signals := Divergence(closes, nets, 4); signals != nil {
		t.Fatalf("price and flow agree; expected no signal, got %+v", signals)
	}
}

func TestRSIFlags(t *testing.T) {
	rsi := models.Series{math.NaN(), 25, 50, 75}
	signals := RSIFlags(rsi)
	if len(signals) != 2 {
		t.Fatalf("expected two flags, got %d", len(signals))
	}
	if signals[0].Kind != models.AlertRSIOversold || signals[0].Index != 1 {
		t.Fatalf("unexpected first flag %+v", signals[0])
	}
	if signals[1].Kind != models.AlertRSIOverbought || signals[1].Index != 3 {
		t.Fatalf("unexpected second flag %+v", signals[1])
	}
}

func TestSpikeSeverityLadder(t *testing.T) {
	cases := []struct {
		z    float64
		want models.Severity
	}{
		{2.6, models.SeverityMedium},
		{3.2, models.SeverityHigh},
		{4.0, models.SeverityCritical},
	}
	for _, c := range cases {
		if got := SpikeSeverity(c.z); got != c.want {
			t.Fatalf("severity(%v) = %s, want %s", c.z, got, c.want)
		}
	}
}
