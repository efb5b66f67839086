package usecase

import (
	"context"
	"testing"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/engine"
	"CoinPulse/pkg/util"
)

func TestCumulativeRunningTotals(t *testing.T) {
	store := newMemBarStore()
	bars := []models.DailyBar{
		{Coin: "BTC", Date: util.DaysAgo(3), BuyVolumeUSD: 300, SellVolumeUSD: 100, NetVolumeUSD: 200},
		{Coin: "BTC", Date: util.DaysAgo(2), BuyVolumeUSD: 100, SellVolumeUSD: 400, NetVolumeUSD: -300},
		{Coin: "BTC", Date: util.DaysAgo(1), BuyVolumeUSD: 500, SellVolumeUSD: 200, NetVolumeUSD: 300},
	}
	if err := store.UpsertBars(context.Background(), drepo.MarketSpot, bars); err != nil {
		t.Fatalf("seed bars: %v", err)
	}

	svc := NewMarketService(store, engine.Defaults(), testLogger(t))
	points, err := svc.Cumulative(context.Background(), models.CumulativeRequest{Coin: "BTC", Days: 30})
	if err != nil {
		t.Fatalf("cumulative: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	last := points[2]
	if last.CumulativeNetUSD != 200 {
		t.Fatalf("net total = %v, want 200", last.CumulativeNetUSD)
	}
	if last.CumulativeBuyUSD != 900 || last.CumulativeSellUSD != 700 {
		t.Fatalf("buy/sell totals = %v/%v, want 900/700", last.CumulativeBuyUSD, last.CumulativeSellUSD)
	}
	if points[1].CumulativeNetUSD != -100 {
		t.Fatalf("mid point net = %v, want -100", points[1].CumulativeNetUSD)
	}
	if last.NetVolumeUSD != 300 {
		t.Fatalf("per-day net should ride along, got %v", last.NetVolumeUSD)
	}
}

func TestCumulativeEmptyHistory(t *testing.T) {
	svc := NewMarketService(newMemBarStore(), engine.Defaults(), testLogger(t))
	points, err := svc.Cumulative(context.Background(), models.CumulativeRequest{Coin: "BTC", Days: 30})
	if err != nil {
		t.Fatalf("cumulative: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no points, got %d", len(points))
	}
}
