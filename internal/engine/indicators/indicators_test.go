package indicators

import (
	"errors"
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/engine"
)

func barsFromCloses(closes []float64) []models.DailyBar {
	bars := make([]models.DailyBar, len(closes))
	for i, c := range closes {
		bars[i] = models.DailyBar{
			Close: c, High: c, Low: c, Open: c,
			TotalVolume: 1000,
		}
	}
	return bars
}

func TestVWAPEmptyInput(t *testing.T) {
	if _, err := VWAP(nil); !errors.Is(err, engine.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestVWAPZeroVolumeFallsBackToClose(t *testing.T) {
	bars := []models.DailyBar{{High: 110, Low: 90, Close: 100, TotalVolume: 0}}
	out, err := VWAP(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 100 {
		t.Fatalf("expected close fallback 100, got %v", out[0])
	}
}

func TestVWAPCumulative(t *testing.T) {
	bars := []models.DailyBar{
		{High: 12, Low: 8, Close: 10, TotalVolume: 100},
		{High: 22, Low: 18, Close: 20, TotalVolume: 100},
	}
	out, err := VWAP(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// typical prices are 10 and 20 at equal volume
	if math.Abs(out[1]-15) > 1e-9 {
		t.Fatalf("expected cumulative vwap 15, got %v", out[1])
	}
}

func TestRSIMonotonicIncreaseApproaches100(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out, err := RSI(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 14; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("index %d should be undefined, got %v", i, out[i])
		}
	}
	for i := 14; i < len(out); i++ {
		if out[i] < 0 || out[i] > 100 {
			t.Fatalf("rsi out of bounds at %d: %v", i, out[i])
		}
		// no losses at all: fully bullish
		if out[i] != 100 {
			t.Fatalf("expected rsi 100 on pure uptrend, got %v", out[i])
		}
	}
}

func TestRSIConstantSeriesDoesNotPanic(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 42
	}
	out, err := RSI(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// zero average loss resolves to 100 by policy, never a division fault
	if out[14] != 100 {
		t.Fatalf("expected 100 for flat series, got %v", out[14])
	}
}

func TestRSIShortInputAllUndefined(t *testing.T) {
	out, err := RSI([]float64{1, 2, 3}, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Fatalf("index %d should be undefined, got %v", i, v)
		}
	}
}

func TestRSIInvalidPeriod(t *testing.T) {
	if _, err := RSI([]float64{1, 2}, 0); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEMASeedIsSMA(t *testing.T) {
	out := EMA([]float64{2, 4, 6, 8}, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("leading entries should be undefined")
	}
	if out[2] != 4 {
		t.Fatalf("expected sma seed 4, got %v", out[2])
	}
}

func TestMACDHistogramIsLineMinusSignal(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*10
	}
	line, sig, hist, err := MACD(closes, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(line) != len(closes) || len(sig) != len(closes) || len(hist) != len(closes) {
		t.Fatalf("series lengths must match input")
	}
	for i := range closes {
		if hist.Defined(i) {
			if math.Abs(hist[i]-(line[i]-sig[i])) > 1e-9 {
				t.Fatalf("histogram mismatch at %d", i)
			}
		}
	}
}

func TestMACDInvalidPeriods(t *testing.T) {
	if _, _, _, err := MACD([]float64{1, 2}, 26, 12, 9); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for fast >= slow, got %v", err)
	}
}

func TestBollingerFlatSeriesCollapses(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 50
	}
	upper, mid, lower, err := Bollinger(closes, 20, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 19; i < len(closes); i++ {
		if upper[i] != 50 || mid[i] != 50 || lower[i] != 50 {
			t.Fatalf("bands should collapse to 50 at %d: %v %v %v", i, upper[i], mid[i], lower[i])
		}
	}
}

func TestBollingerBandOrdering(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19, 18, 20, 19, 21, 20, 22}
	upper, mid, lower, err := Bollinger(closes, 20, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range closes {
		if !mid.Defined(i) {
			continue
		}
		if upper[i] < mid[i] || mid[i] < lower[i] {
			t.Fatalf("band ordering violated at %d", i)
		}
	}
}

func TestOBVDirections(t *testing.T) {
	closes := []float64{10, 11, 11, 9}
	volumes := []float64{100, 50, 30, 20}
	out, err := OBV(closes, volumes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{100, 150, 150, 130}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("obv[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestComputeBundleLengths(t *testing.T) {
	bars := barsFromCloses(func() []float64 {
		cs := make([]float64, 40)
		for i := range cs {
			cs[i] = 100 + float64(i%7)
		}
		return cs
	}())
	series, err := Compute(bars, engine.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := len(bars)
	if len(series.VWAP) != n || len(series.RSI) != n || len(series.MACD) != n ||
		len(series.BollingerMid) != n || len(series.OBV) != n || len(series.Dates) != n {
		t.Fatalf("all series must align to input length %d", n)
	}
}

func TestComputeEmptyInput(t *testing.T) {
	if _, err := Compute(nil, engine.Defaults()); !errors.Is(err, engine.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
