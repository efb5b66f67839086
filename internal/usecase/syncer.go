package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/engine"
	"CoinPulse/internal/engine/flow"
	"CoinPulse/pkg/logger"
)

// Syncer pulls daily market data into the stores: spot klines, ETF bars
// (with estimated flow splits) and a futures snapshot per coin. It runs once
// per UTC day at the configured hour, and on demand via the API.
type Syncer struct {
	spot    drepo.BarSource
	etf     drepo.BarSource
	futSrc  drepo.FuturesSource
	bars    drepo.BarStore
	futures drepo.FuturesStore
	scanner *AlertScanner
	metrics drepo.Metrics
	params  engine.Params
	log     *logger.Logger

	coins      []string
	hourUTC    int
	interval   time.Duration
	scanOnSync bool
	scanDays   int

	mu      sync.Mutex
	lastRun time.Time
	last    map[string]CoinResult
}

// SyncerConfig carries the schedule and coin universe.
type SyncerConfig struct {
	Coins      []string
	HourUTC    int
	Interval   time.Duration
	ScanOnSync bool
	ScanDays   int
}

// NewSyncer wires the sync pipeline. etfSource may be nil when no ETF feed
// is configured.
func NewSyncer(
	spot drepo.BarSource,
	etfSource drepo.BarSource,
	futSrc drepo.FuturesSource,
	bars drepo.BarStore,
	futuresStore drepo.FuturesStore,
	scanner *AlertScanner,
	metrics drepo.Metrics,
	params engine.Params,
	log *logger.Logger,
	cfg SyncerConfig,
) *Syncer {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.ScanDays <= 0 {
		cfg.ScanDays = 30
	}
	return &Syncer{
		spot:       spot,
		etf:        etfSource,
		futSrc:     futSrc,
		bars:       bars,
		futures:    futuresStore,
		scanner:    scanner,
		metrics:    metrics,
		params:     params,
		log:        log,
		coins:      cfg.Coins,
		hourUTC:    cfg.HourUTC,
		interval:   cfg.Interval,
		scanOnSync: cfg.ScanOnSync,
		scanDays:   cfg.ScanDays,
		last:       make(map[string]CoinResult),
	}
}

// CoinResult reports one coin's sync outcome.
type CoinResult struct {
	Coin     string `json:"coin"`
	SpotBars int    `json:"spot_bars"`
	ETFBars  int    `json:"etf_bars"`
	Futures  bool   `json:"futures"`
	Alerts   int    `json:"alerts"`
	Error    string `json:"error,omitempty"`
}

// SyncAll syncs every configured coin. Per-coin failures are recorded and
// reported, not fatal: one bad feed must not starve the rest.
func (s *Syncer) SyncAll(ctx context.Context) []CoinResult {
	results := make([]CoinResult, 0, len(s.coins))
	for _, coin := range s.coins {
		results = append(results, s.SyncCoin(ctx, coin))
	}
	return results
}

// SyncCoin performs one coin's incremental sync: fetch from the day after
// the latest stored bar, upsert, refresh the futures snapshot, then scan.
func (s *Syncer) SyncCoin(ctx context.Context, coin string) CoinResult {
	res := CoinResult{Coin: coin}

	spotBars, err := s.syncSpot(ctx, coin)
	s.metrics.RecordSync(coin, spotBars, err)
	if err != nil {
		s.log.Error("sync: spot fetch failed", logger.String("coin", coin), logger.Error(err))
		res.Error = err.Error()
		s.record(res)
		return res
	}
	res.SpotBars = spotBars

	if s.etf != nil {
		etfBars, err := s.syncETF(ctx, coin)
		if err != nil {
			// ETF coverage is best-effort: many coins have no proxy ticker
			s.log.Warn("sync: etf fetch skipped", logger.String("coin", coin), logger.Error(err))
			s.metrics.RecordError("sync_etf")
		} else {
			res.ETFBars = etfBars
		}
	}

	if err := s.syncFutures(ctx, coin); err != nil {
		s.log.Warn("sync: futures snapshot failed", logger.String("coin", coin), logger.Error(err))
		s.metrics.RecordError("sync_futures")
	} else {
		res.Futures = true
	}

	if s.scanOnSync && s.scanner != nil {
		scan, err := s.scanner.Scan(ctx, coin, s.scanDays)
		if err != nil {
			s.log.Error("sync: scan failed", logger.String("coin", coin), logger.Error(err))
		} else {
			res.Alerts = scan.Inserted
		}
	}

	s.log.Info("sync finished",
		logger.String("coin", coin),
		logger.Int("spot_bars", res.SpotBars),
		logger.Int("etf_bars", res.ETFBars),
		logger.Bool("futures", res.Futures),
	)
	s.record(res)
	return res
}

func (s *Syncer) record(res CoinResult) {
	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.last[res.Coin] = res
	s.mu.Unlock()
}

// SyncStatus reports the schedule and the outcome of each coin's most
// recent sync.
type SyncStatus struct {
	LastRunAt string       `json:"last_run_at,omitempty"`
	HourUTC   int          `json:"hour_utc"`
	Coins     []string     `json:"coins"`
	Results   []CoinResult `json:"results"`
}

// Status snapshots the syncer state. Results are ordered by coin; an empty
// last_run_at means no sync has completed since startup.
func (s *Syncer) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := SyncStatus{HourUTC: s.hourUTC, Coins: s.coins}
	if !s.lastRun.IsZero() {
		out.LastRunAt = s.lastRun.Format(time.RFC3339)
	}
	for _, res := range s.last {
		out.Results = append(out.Results, res)
	}
	sort.Slice(out.Results, func(i, j int) bool { return out.Results[i].Coin < out.Results[j].Coin })
	return out
}

func (s *Syncer) syncSpot(ctx context.Context, coin string) (int, error) {
	since, err := s.bars.LatestDate(ctx, drepo.MarketSpot, coin)
	if err != nil {
		return 0, fmt.Errorf("latest spot date: %w", err)
	}
	bars, err := s.spot.FetchDailyBars(ctx, coin, since)
	if err != nil {
		return 0, err
	}
	if err := s.bars.UpsertBars(ctx, drepo.MarketSpot, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

func (s *Syncer) syncETF(ctx context.Context, coin string) (int, error) {
	since, err := s.bars.LatestDate(ctx, drepo.MarketETF, coin)
	if err != nil {
		return 0, fmt.Errorf("latest etf date: %w", err)
	}
	bars, err := s.etf.FetchDailyBars(ctx, coin, since)
	if err != nil {
		return 0, err
	}
	// ETF feeds carry no taker-side split; estimate it before persisting
	bars = flow.Estimate(bars, s.params.FlowBlendWeight)
	if err := s.bars.UpsertBars(ctx, drepo.MarketETF, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

func (s *Syncer) syncFutures(ctx context.Context, coin string) error {
	snap, err := s.futSrc.FetchSnapshot(ctx, coin)
	if err != nil {
		return err
	}
	// derive premium and annualized funding before persisting
	snap = futuresDerive(snap, s.params)
	return s.futures.InsertSnapshot(ctx, snap)
}

// Run blocks until ctx is done, waking every interval and syncing once per
// UTC day when the configured hour has been reached.
func (s *Syncer) Run(ctx context.Context) {
	var lastDay string
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		now := time.Now().UTC()
		day := now.Format("2006-01-02")
		if now.Hour() >= s.hourUTC && day != lastDay {
			s.log.Info("scheduled sync starting", logger.String("day", day))
			s.SyncAll(ctx)
			lastDay = day
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
