package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/engine"
	"CoinPulse/internal/engine/anomaly"
	"CoinPulse/internal/engine/futures"
	"CoinPulse/internal/engine/indicators"
	"CoinPulse/internal/engine/whale"
	"CoinPulse/pkg/logger"
)

// AlertScanner orchestrates the analytics passes over one coin's history and
// persists what they find. Scans are idempotent: the dedup key
// (coin, date, kind) is checked against the store before insert, so
// re-running over unchanged data inserts nothing.
type AlertScanner struct {
	bars      drepo.BarStore
	alerts    drepo.AlertStore
	futures   drepo.FuturesStore
	publisher drepo.AlertPublisher
	metrics   drepo.Metrics
	params    engine.Params
	log       *logger.Logger
}

// NewAlertScanner wires the scanner.
func NewAlertScanner(
	bars drepo.BarStore,
	alerts drepo.AlertStore,
	futuresStore drepo.FuturesStore,
	publisher drepo.AlertPublisher,
	metrics drepo.Metrics,
	params engine.Params,
	log *logger.Logger,
) *AlertScanner {
	return &AlertScanner{
		bars:      bars,
		alerts:    alerts,
		futures:   futuresStore,
		publisher: publisher,
		metrics:   metrics,
		params:    params,
		log:       log,
	}
}

// ScanResult reports one scan run.
type ScanResult struct {
	Coin     string         `json:"coin"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Produced int            `json:"produced"`
	Inserted int            `json:"inserted"`
	Alerts   []models.Alert `json:"alerts"`
}

// Scan runs every detection pass over the coin's trailing lookbackDays and
// persists alerts not seen before. The returned list holds everything the
// passes produced in the window, ordered by severity then recency,
// regardless of whether each item was newly inserted.
func (s *AlertScanner) Scan(ctx context.Context, coin string, lookbackDays int) (ScanResult, error) {
	start := time.Now()

	// fetch enough history for the anomaly window to be full at the first scanned bar
	bars, err := s.bars.GetLatestNBars(ctx, drepo.MarketSpot, coin, lookbackDays+s.params.AnomalyWindow)
	if err != nil {
		s.metrics.RecordError("scan")
		return ScanResult{}, fmt.Errorf("scan %s: %w", coin, err)
	}
	if len(bars) == 0 {
		return ScanResult{}, fmt.Errorf("scan %s: %w", coin, engine.ErrInsufficientData)
	}

	startIdx := len(bars) - lookbackDays
	if startIdx < 0 {
		startIdx = 0
	}
	from := bars[startIdx].Date
	to := bars[len(bars)-1].Date

	var produced []models.Alert
	produced = append(produced, s.whaleAlerts(bars, startIdx)...)
	produced = append(produced, s.spikeAlerts(bars, startIdx)...)
	produced = append(produced, s.divergenceAlerts(bars, startIdx)...)
	produced = append(produced, s.rsiAlerts(bars, startIdx)...)

	futuresAlerts, err := s.futuresAlerts(ctx, coin)
	if err != nil {
		// futures coverage is optional per coin; the scan proceeds
		s.log.Warn("scan: futures pass skipped",
			logger.String("coin", coin), logger.Error(err))
		s.metrics.RecordError("scan_futures")
	}
	produced = append(produced, futuresAlerts...)

	inserted, err := s.persistNew(ctx, coin, from, to, produced)
	if err != nil {
		s.metrics.RecordError("scan")
		return ScanResult{}, fmt.Errorf("scan %s: %w", coin, err)
	}

	models.SortAlerts(produced)
	s.metrics.ObserveScan(coin, time.Since(start))
	s.log.Info("scan finished",
		logger.String("coin", coin),
		logger.Int("produced", len(produced)),
		logger.Int("inserted", len(inserted)),
		logger.Duration("duration_ms", time.Since(start)),
	)

	return ScanResult{
		Coin:     coin,
		From:     from,
		To:       to,
		Produced: len(produced),
		Inserted: len(inserted),
		Alerts:   produced,
	}, nil
}

// persistNew filters out already-persisted keys, inserts the remainder and
// fans them out. Publishing is best-effort: a broker failure is logged and
// counted, never surfaced to the caller.
func (s *AlertScanner) persistNew(ctx context.Context, coin, from, to string, produced []models.Alert) ([]models.Alert, error) {
	if len(produced) == 0 {
		return nil, nil
	}
	existing, err := s.alerts.ExistingKeys(ctx, coin, from, to)
	if err != nil {
		return nil, err
	}

	seen := make(map[models.AlertKey]struct{}, len(produced))
	var fresh []models.Alert
	for _, a := range produced {
		k := a.Key()
		if _, ok := existing[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, a)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	if err := s.alerts.InsertAlerts(ctx, fresh); err != nil {
		return nil, err
	}
	for _, a := range fresh {
		s.metrics.RecordAlert(string(a.Kind), string(a.Severity))
	}

	if err := s.publisher.PublishAlerts(ctx, fresh); err != nil {
		s.log.Warn("scan: alert publish failed",
			logger.String("coin", coin),
			logger.Int("alerts", len(fresh)),
			logger.Error(err))
		s.metrics.RecordError("publish")
	}
	return fresh, nil
}

// whaleAlerts classifies each bar's USD flow against the tier ladder three
// ways: taker buy pressure, taker sell pressure, and the net imbalance. Buy
// and sell sides are judged independently, so a heavy two-way day produces
// both a whale_buy and a whale_sell; the net imbalance maps to accumulation
// (net buying) or distribution (net selling).
func (s *AlertScanner) whaleAlerts(bars []models.DailyBar, startIdx int) []models.Alert {
	var out []models.Alert
	for i := startIdx; i < len(bars); i++ {
		b := bars[i]

		if class, ok := whale.Classify(b.BuyVolumeUSD, s.params.Whale); ok {
			out = append(out, models.Alert{
				Coin:     b.Coin,
				Date:     b.Date,
				Kind:     models.AlertWhaleBuy,
				Severity: class.Severity(),
				Description: fmt.Sprintf("%s %s buy pressure of %s (%s)",
					models.AlertWhaleBuy.Icon(), b.Coin, usd(b.BuyVolumeUSD), class),
				Detail: models.WhaleDetail{
					SizeClass: string(class),
					ValueUSD:  b.BuyVolumeUSD,
					Volume:    b.BuyVolume,
					Price:     b.Close,
				},
			})
		}

		if class, ok := whale.Classify(b.SellVolumeUSD, s.params.Whale); ok {
			out = append(out, models.Alert{
				Coin:     b.Coin,
				Date:     b.Date,
				Kind:     models.AlertWhaleSell,
				Severity: class.Severity(),
				Description: fmt.Sprintf("%s %s sell pressure of %s (%s)",
					models.AlertWhaleSell.Icon(), b.Coin, usd(b.SellVolumeUSD), class),
				Detail: models.WhaleDetail{
					SizeClass: string(class),
					ValueUSD:  b.SellVolumeUSD,
					Volume:    b.SellVolume,
					Price:     b.Close,
				},
			})
		}

		net := math.Abs(b.NetVolumeUSD)
		class, ok := whale.Classify(net, s.params.Whale)
		if !ok {
			continue
		}
		kind := models.AlertWhaleAccumulation
		noun := "accumulation"
		if b.NetVolumeUSD < 0 {
			kind = models.AlertWhaleDistribution
			noun = "distribution"
		}
		out = append(out, models.Alert{
			Coin:     b.Coin,
			Date:     b.Date,
			Kind:     kind,
			Severity: class.Severity(),
			Description: fmt.Sprintf("%s %s net %s of %s (%s)",
				kind.Icon(), b.Coin, noun, usd(net), class),
			Detail: models.WhaleDetail{
				SizeClass: string(class),
				ValueUSD:  net,
				Volume:    b.NetVolume,
				Price:     b.Close,
			},
		})
	}
	return out
}

func (s *AlertScanner) spikeAlerts(bars []models.DailyBar, startIdx int) []models.Alert {
	detector := anomaly.New(s.params.AnomalyWindow, s.params.ZScoreThreshold)
	var out []models.Alert
	for _, spike := range detector.Spikes(bars) {
		if spike.Index < startIdx {
			continue
		}
		b := bars[spike.Index]
		out = append(out, models.Alert{
			Coin:     b.Coin,
			Date:     b.Date,
			Kind:     spike.Kind,
			Severity: anomaly.SpikeSeverity(spike.ZScore),
			Description: fmt.Sprintf("%s %s volume anomaly: %s is %.1f sigma above the %d-day baseline",
				spike.Kind.Icon(), b.Coin, usd(math.Abs(b.NetVolumeUSD)), spike.ZScore, s.params.AnomalyWindow),
			Detail: models.SpikeDetail{
				ZScore:    spike.ZScore,
				Volume:    b.NetVolume,
				AvgVolume: spike.AvgVolume,
				ValueUSD:  math.Abs(b.NetVolumeUSD),
				Price:     b.Close,
			},
		})
	}
	return out
}

func (s *AlertScanner) divergenceAlerts(bars []models.DailyBar, startIdx int) []models.Alert {
	signals := anomaly.Divergence(models.Closes(bars), models.NetVolumes(bars), s.params.DivergenceSpan)
	var out []models.Alert
	for _, sig := range signals {
		if sig.Index < startIdx {
			continue
		}
		b := bars[sig.Index]
		direction := "falling price with net buying"
		if sig.Kind == models.AlertBearishDivergence {
			direction = "rising price with net selling"
		}
		out = append(out, models.Alert{
			Coin:     b.Coin,
			Date:     b.Date,
			Kind:     sig.Kind,
			Severity: models.SeverityMedium,
			Description: fmt.Sprintf("%s %s divergence over %d days: %s",
				sig.Kind.Icon(), b.Coin, s.params.DivergenceSpan, direction),
			Detail: models.DivergenceDetail{
				Price:     b.Close,
				NetVolume: b.NetVolume,
			},
		})
	}
	return out
}

func (s *AlertScanner) rsiAlerts(bars []models.DailyBar, startIdx int) []models.Alert {
	rsi, err := indicators.RSI(models.Closes(bars), s.params.RSIPeriod)
	if err != nil {
		// validated params and non-empty bars make this unreachable
		return nil
	}
	var out []models.Alert
	for _, sig := range anomaly.RSIFlags(rsi) {
		if sig.Index < startIdx {
			continue
		}
		b := bars[sig.Index]
		state := "oversold"
		if sig.Kind == models.AlertRSIOverbought {
			state = "overbought"
		}
		out = append(out, models.Alert{
			Coin:     b.Coin,
			Date:     b.Date,
			Kind:     sig.Kind,
			Severity: models.SeverityMedium,
			Description: fmt.Sprintf("%s %s RSI %s at %.1f",
				sig.Kind.Icon(), b.Coin, state, rsi[sig.Index]),
			Detail: models.RSIDetail{
				RSI:   rsi[sig.Index],
				Price: b.Close,
			},
		})
	}
	return out
}

func (s *AlertScanner) futuresAlerts(ctx context.Context, coin string) ([]models.Alert, error) {
	lookback := s.params.PersistenceBars
	if lookback < 7 {
		lookback = 7
	}
	snaps, err := s.futures.GetLatestN(ctx, coin, lookback)
	if err != nil {
		return nil, err
	}

	analyzer := futures.NewAnalyzer(s.params)
	var out []models.Alert
	for _, flag := range analyzer.Flags(snaps) {
		snap := flag.Snapshot
		out = append(out, models.Alert{
			Coin:     snap.Coin,
			Date:     snap.Date,
			Kind:     flag.Kind,
			Severity: flag.Severity,
			Description: fmt.Sprintf("%s %s futures: premium %.2f%%, funding %.2f%% annualized",
				flag.Kind.Icon(), snap.Coin, snap.PremiumPct, snap.FundingRateAnnualized),
			Detail: models.FuturesDetail{
				PremiumPct:        snap.PremiumPct,
				FundingRate:       snap.FundingRate,
				FundingAnnualized: snap.FundingRateAnnualized,
				SpotPrice:         snap.SpotPrice,
				FuturesPrice:      snap.FuturesPrice,
			},
		})
	}
	return out, nil
}

// usd renders a dollar amount compactly ("$12.3M").
func usd(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
