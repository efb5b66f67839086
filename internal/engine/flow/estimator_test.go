package flow

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestEstimateConservesVolume(t *testing.T) {
	bars := []models.DailyBar{
		{Date: "2024-01-01", Open: 10, High: 12, Low: 9, Close: 11.5, TotalVolume: 1000},
		{Date: "2024-01-02", Open: 11.5, High: 13, Low: 11, Close: 11.2, TotalVolume: 2500},
		{Date: "2024-01-03", Open: 11.2, High: 11.2, Low: 11.2, Close: 11.2, TotalVolume: 800},
	}
	out := Estimate(bars, 0.7)
	for i, b := range out {
		if math.Abs(b.BuyVolume+b.SellVolume-b.TotalVolume) > 1e-9 {
			t.Fatalf("bar %d: buy+sell != total (%v + %v != %v)", i, b.BuyVolume, b.SellVolume, b.TotalVolume)
		}
		if b.BuyVolume < 0 || b.SellVolume < 0 {
			t.Fatalf("bar %d: negative side volume", i)
		}
		if math.Abs(b.NetVolume-(b.BuyVolume-b.SellVolume)) > 1e-9 {
			t.Fatalf("bar %d: net volume mismatch", i)
		}
	}
}

func TestEstimateFlatRangeIsNeutral(t *testing.T) {
	bars := []models.DailyBar{
		{Date: "2024-01-01", Open: 10, High: 10, Low: 10, Close: 10, TotalVolume: 1000},
	}
	out := Estimate(bars, 0.7)
	// flat range blends 0.5 with the neutral prior: still an even split
	if math.Abs(out[0].BuyVolume-500) > 1e-9 || math.Abs(out[0].SellVolume-500) > 1e-9 {
		t.Fatalf("flat day should split evenly, got buy=%v sell=%v", out[0].BuyVolume, out[0].SellVolume)
	}
	if out[0].NetVolume != 0 {
		t.Fatalf("flat day net volume should be 0, got %v", out[0].NetVolume)
	}
}

func TestEstimateCloseAtHighSkewsBuy(t *testing.T) {
	bars := []models.DailyBar{
		{Date: "2024-01-01", Open: 10, High: 12, Low: 10, Close: 12, TotalVolume: 1000},
	}
	out := Estimate(bars, 0.7)
	// pos=1 blended with neutral prior: 0.7*1 + 0.3*0.5 = 0.85
	if math.Abs(out[0].BuyVolume-850) > 1e-9 {
		t.Fatalf("expected buy volume 850, got %v", out[0].BuyVolume)
	}
}

func TestEstimateMomentumCarriesPrior(t *testing.T) {
	bars := []models.DailyBar{
		{Date: "2024-01-01", Open: 10, High: 12, Low: 10, Close: 12, TotalVolume: 1000},
		{Date: "2024-01-02", Open: 12, High: 12, Low: 12, Close: 12, TotalVolume: 1000},
	}
	out := Estimate(bars, 0.7)
	// day 2 is flat (pos 0.5) but inherits 30% of day 1's 0.85 estimate:
	// 0.7*0.5 + 0.3*0.85 = 0.605
	if math.Abs(out[1].BuyVolume-605) > 1e-9 {
		t.Fatalf("expected blended buy volume 605, got %v", out[1].BuyVolume)
	}
}

func TestEstimateUSDUsesClose(t *testing.T) {
	bars := []models.DailyBar{
		{Date: "2024-01-01", Open: 10, High: 10, Low: 10, Close: 10, TotalVolume: 100},
	}
	out := Estimate(bars, 0.7)
	if math.Abs(out[0].BuyVolumeUSD-500) > 1e-9 {
		t.Fatalf("expected buy usd 500, got %v", out[0].BuyVolumeUSD)
	}
}

func TestEstimateDoesNotMutateInput(t *testing.T) {
	bars := []models.DailyBar{
		{Date: "2024-01-01", Open: 10, High: 12, Low: 10, Close: 12, TotalVolume: 1000},
	}
	Estimate(bars, 0.7)
	if bars[0].BuyVolume != 0 {
		t.Fatalf("input slice must stay untouched")
	}
}
