package usecase

import (
	"context"
	"fmt"
	"testing"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/engine"
)

type fakeBarSource struct {
	bars []models.DailyBar
	err  error
}

func (f fakeBarSource) FetchDailyBars(_ context.Context, coin, since string) ([]models.DailyBar, error) {
	return f.bars, f.err
}

type fakeFuturesSource struct {
	snap models.FuturesSnapshot
}

func (f fakeFuturesSource) FetchSnapshot(_ context.Context, coin string) (models.FuturesSnapshot, error) {
	return f.snap, nil
}

func newTestSyncer(t *testing.T, spot fakeBarSource) *Syncer {
	t.Helper()
	futSrc := fakeFuturesSource{snap: models.FuturesSnapshot{
		Coin: "BTC", Date: day(0), SpotPrice: 100, FuturesPrice: 101,
	}}
	return NewSyncer(spot, nil, futSrc, newMemBarStore(), &memFuturesStore{},
		nil, nopMetrics{}, engine.Defaults(), testLogger(t),
		SyncerConfig{Coins: []string{"BTC"}, HourUTC: 1})
}

func TestSyncerStatusTracksLastRun(t *testing.T) {
	s := newTestSyncer(t, fakeBarSource{bars: quietBars(3)})

	st := s.Status()
	if st.LastRunAt != "" || len(st.Results) != 0 {
		t.Fatalf("expected an empty status before any sync, got %+v", st)
	}
	if st.HourUTC != 1 || len(st.Coins) != 1 {
		t.Fatalf("schedule missing from status: %+v", st)
	}

	s.SyncCoin(context.Background(), "BTC")

	st = s.Status()
	if st.LastRunAt == "" {
		t.Fatalf("last_run_at should be set after a sync")
	}
	if len(st.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(st.Results))
	}
	r := st.Results[0]
	if r.Coin != "BTC" || r.SpotBars != 3 || !r.Futures || r.Error != "" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestSyncerStatusRecordsFailures(t *testing.T) {
	s := newTestSyncer(t, fakeBarSource{err: fmt.Errorf("venue down")})

	s.SyncCoin(context.Background(), "BTC")

	st := s.Status()
	if len(st.Results) != 1 || st.Results[0].Error == "" {
		t.Fatalf("a failed sync should still show up in status, got %+v", st)
	}
}
