package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/engine"
	"CoinPulse/pkg/logger"
)

// --- in-memory doubles ---

type memBarStore struct {
	bars map[drepo.Market]map[string][]models.DailyBar
}

func newMemBarStore() *memBarStore {
	return &memBarStore{bars: map[drepo.Market]map[string][]models.DailyBar{}}
}

func (m *memBarStore) UpsertBars(_ context.Context, market drepo.Market, bars []models.DailyBar) error {
	if m.bars[market] == nil {
		m.bars[market] = map[string][]models.DailyBar{}
	}
	for _, b := range bars {
		m.bars[market][b.Coin] = append(m.bars[market][b.Coin], b)
	}
	return nil
}

func (m *memBarStore) GetBars(_ context.Context, market drepo.Market, coin, from, to string, limit int) ([]models.DailyBar, error) {
	var out []models.DailyBar
	for _, b := range m.bars[market][coin] {
		if from != "" && b.Date < from {
			continue
		}
		if to != "" && b.Date > to {
			continue
		}
		out = append(out, b)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memBarStore) GetLatestNBars(_ context.Context, market drepo.Market, coin string, n int) ([]models.DailyBar, error) {
	all := m.bars[market][coin]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

func (m *memBarStore) LatestDate(_ context.Context, market drepo.Market, coin string) (string, error) {
	all := m.bars[market][coin]
	if len(all) == 0 {
		return "", nil
	}
	return all[len(all)-1].Date, nil
}

func (m *memBarStore) Coins(_ context.Context, market drepo.Market) ([]string, error) {
	var out []string
	for c := range m.bars[market] {
		out = append(out, c)
	}
	return out, nil
}

type memAlertStore struct {
	rows []models.StoredAlert
}

func (m *memAlertStore) ExistingKeys(_ context.Context, coin, from, to string) (map[models.AlertKey]struct{}, error) {
	keys := make(map[models.AlertKey]struct{})
	for _, r := range m.rows {
		if r.Coin != coin {
			continue
		}
		keys[models.AlertKey{Coin: r.Coin, Date: r.Date, Kind: r.Kind}] = struct{}{}
	}
	return keys, nil
}

func (m *memAlertStore) InsertAlerts(_ context.Context, alerts []models.Alert) error {
	for i, a := range alerts {
		row := a.Flatten()
		row.ID = int64(len(m.rows) + i + 1)
		m.rows = append(m.rows, row)
	}
	return nil
}

func (m *memAlertStore) ListAlerts(_ context.Context, f drepo.AlertFilter) ([]models.StoredAlert, error) {
	return m.rows, nil
}

func (m *memAlertStore) Acknowledge(_ context.Context, id int64) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Acknowledged = true
			return nil
		}
	}
	return fmt.Errorf("alert %d not found", id)
}

func (m *memAlertStore) Summary(_ context.Context, coin string, days int) (models.AlertSummary, error) {
	s := models.AlertSummary{
		Coin:       coin,
		Days:       days,
		BySeverity: map[models.Severity]int{},
		ByKind:     map[models.AlertKind]int{},
	}
	for _, r := range m.rows {
		s.Total++
		s.BySeverity[r.Severity]++
		s.ByKind[r.Kind]++
	}
	return s, nil
}

func (m *memAlertStore) PurgeOlderThan(_ context.Context, date string) error { return nil }

type memFuturesStore struct {
	snaps []models.FuturesSnapshot
}

func (m *memFuturesStore) InsertSnapshot(_ context.Context, snap models.FuturesSnapshot) error {
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *memFuturesStore) GetLatestN(_ context.Context, coin string, n int) ([]models.FuturesSnapshot, error) {
	all := m.snaps
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

type memPublisher struct {
	published []models.Alert
	fail      bool
}

func (m *memPublisher) PublishAlerts(_ context.Context, alerts []models.Alert) error {
	if m.fail {
		return fmt.Errorf("broker down")
	}
	m.published = append(m.published, alerts...)
	return nil
}

func (m *memPublisher) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveScan(string, time.Duration) {}
func (nopMetrics) RecordAlert(string, string)        {}
func (nopMetrics) RecordSync(string, int, error)     {}
func (nopMetrics) RecordError(string)                {}

// --- fixtures ---

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func day(i int) string {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
}

// quietBars builds n unremarkable bars: flat-ish price, small mixed flow.
func quietBars(n int) []models.DailyBar {
	bars := make([]models.DailyBar, n)
	for i := range bars {
		net := 100.0
		if i%2 == 0 {
			net = -120.0
		}
		price := 100 + float64(i%3)
		bars[i] = models.DailyBar{
			Coin: "BTC", Date: day(i),
			Open: price, High: price + 1, Low: price - 1, Close: price,
			TotalVolume: 1000, BuyVolume: 500, SellVolume: 500,
			NetVolume: net / price, NetVolumeUSD: net,
		}
	}
	return bars
}

func newScanner(t *testing.T, bars []models.DailyBar, alerts *memAlertStore, fut *memFuturesStore, pub *memPublisher) *AlertScanner {
	t.Helper()
	store := newMemBarStore()
	if err := store.UpsertBars(context.Background(), drepo.MarketSpot, bars); err != nil {
		t.Fatalf("seed bars: %v", err)
	}
	return NewAlertScanner(store, alerts, fut, pub, nopMetrics{}, engine.Defaults(), testLogger(t))
}

// --- tests ---

func TestScanFindsWhaleAndSpike(t *testing.T) {
	bars := quietBars(40)
	// day 39: $12.4M of taker buying against $400K of selling, a mega
	// outlier against the quiet baseline
	bars[39].BuyVolumeUSD = 12_400_000
	bars[39].BuyVolume = 124_000
	bars[39].SellVolumeUSD = 400_000
	bars[39].NetVolumeUSD = 12_000_000
	bars[39].NetVolume = 120_000

	alerts := &memAlertStore{}
	pub := &memPublisher{}
	s := newScanner(t, bars, alerts, &memFuturesStore{}, pub)

	res, err := s.Scan(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	kinds := map[models.AlertKind]bool{}
	for _, a := range res.Alerts {
		kinds[a.Kind] = true
	}
	if !kinds[models.AlertWhaleBuy] {
		t.Fatalf("expected a whale_buy alert, got %v", kinds)
	}
	if !kinds[models.AlertBuyVolumeSpike] {
		t.Fatalf("expected a buy_volume_spike alert, got %v", kinds)
	}
	if res.Inserted == 0 || len(alerts.rows) != res.Inserted {
		t.Fatalf("inserted count mismatch: %d vs %d rows", res.Inserted, len(alerts.rows))
	}
	if len(pub.published) != res.Inserted {
		t.Fatalf("published %d, inserted %d", len(pub.published), res.Inserted)
	}
}

func TestScanClassifiesSidesIndependently(t *testing.T) {
	bars := quietBars(40)
	// heavy two-way day: $600K bought, $5.6M sold, $5M net selling
	bars[39].BuyVolumeUSD = 600_000
	bars[39].BuyVolume = 6_000
	bars[39].SellVolumeUSD = 5_600_000
	bars[39].SellVolume = 56_000
	bars[39].NetVolumeUSD = -5_000_000
	bars[39].NetVolume = -50_000

	s := newScanner(t, bars, &memAlertStore{}, &memFuturesStore{}, &memPublisher{})
	res, err := s.Scan(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	got := map[models.AlertKind]models.Severity{}
	for _, a := range res.Alerts {
		got[a.Kind] = a.Severity
	}
	if _, ok := got[models.AlertWhaleBuy]; !ok {
		t.Fatalf("buy side should be classified on its own, got %v", got)
	}
	if sev, ok := got[models.AlertWhaleSell]; !ok || sev != models.SeverityHigh {
		t.Fatalf("$5.6M sell pressure should be a high whale_sell, got %v", got)
	}
	if _, ok := got[models.AlertWhaleDistribution]; !ok {
		t.Fatalf("net selling should flag distribution, got %v", got)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	bars := quietBars(40)
	bars[39].NetVolumeUSD = 12_000_000
	bars[39].NetVolume = 120_000

	alerts := &memAlertStore{}
	s := newScanner(t, bars, alerts, &memFuturesStore{}, &memPublisher{})

	first, err := s.Scan(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := s.Scan(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if second.Inserted != 0 {
		t.Fatalf("second scan inserted %d, want 0", second.Inserted)
	}
	if second.Produced != first.Produced {
		t.Fatalf("produced diverged: %d vs %d", first.Produced, second.Produced)
	}
	if len(alerts.rows) != first.Inserted {
		t.Fatalf("store grew on rescan: %d rows", len(alerts.rows))
	}
}

func TestScanOrdersBySeverity(t *testing.T) {
	bars := quietBars(40)
	bars[39].NetVolumeUSD = 12_000_000
	bars[39].NetVolume = 120_000

	s := newScanner(t, bars, &memAlertStore{}, &memFuturesStore{}, &memPublisher{})
	res, err := s.Scan(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for i := 1; i < len(res.Alerts); i++ {
		if res.Alerts[i].Severity.Rank() > res.Alerts[i-1].Severity.Rank() {
			t.Fatalf("severity order violated at %d: %s after %s",
				i, res.Alerts[i].Severity, res.Alerts[i-1].Severity)
		}
	}
}

func TestScanPublishFailureDoesNotFailScan(t *testing.T) {
	bars := quietBars(40)
	bars[39].NetVolumeUSD = 12_000_000
	bars[39].NetVolume = 120_000

	alerts := &memAlertStore{}
	s := newScanner(t, bars, alerts, &memFuturesStore{}, &memPublisher{fail: true})

	res, err := s.Scan(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("scan must survive a broker failure: %v", err)
	}
	if res.Inserted == 0 {
		t.Fatalf("alerts should persist even when publishing fails")
	}
}

func TestScanFuturesFlags(t *testing.T) {
	bars := quietBars(40)
	fut := &memFuturesStore{}
	for i := 0; i < 3; i++ {
		fut.snaps = append(fut.snaps, models.FuturesSnapshot{
			Coin: "BTC", Date: day(37 + i),
			SpotPrice: 100, FuturesPrice: 101.5, PremiumPct: 1.5,
		})
	}

	s := newScanner(t, bars, &memAlertStore{}, fut, &memPublisher{})
	res, err := s.Scan(context.Background(), "BTC", 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	found := false
	for _, a := range res.Alerts {
		if a.Kind == models.AlertHighFuturesPremium {
			found = true
			if a.Severity != models.SeverityHigh {
				t.Fatalf("1.5%% premium should be high severity, got %s", a.Severity)
			}
		}
	}
	if !found {
		t.Fatalf("expected high_futures_premium among %d alerts", len(res.Alerts))
	}
}

func TestScanEmptyHistory(t *testing.T) {
	s := newScanner(t, nil, &memAlertStore{}, &memFuturesStore{}, &memPublisher{})
	if _, err := s.Scan(context.Background(), "BTC", 10); err == nil {
		t.Fatalf("expected an error on empty history")
	}
}
