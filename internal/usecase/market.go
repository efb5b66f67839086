package usecase

import (
	"context"
	"fmt"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/engine"
	"CoinPulse/internal/engine/anomaly"
	"CoinPulse/internal/engine/indicators"
	"CoinPulse/pkg/logger"
	"CoinPulse/pkg/util"
)

// MarketService serves bar, summary and indicator queries. Pure reads: all
// mutation goes through the Syncer.
type MarketService struct {
	bars   drepo.BarStore
	params engine.Params
	log    *logger.Logger
}

// NewMarketService creates the query service.
func NewMarketService(bars drepo.BarStore, params engine.Params, log *logger.Logger) *MarketService {
	return &MarketService{bars: bars, params: params, log: log}
}

// Volumes returns spot daily bars for the requested range.
func (s *MarketService) Volumes(ctx context.Context, req models.VolumesRequest) ([]models.DailyBar, error) {
	return s.bars.GetBars(ctx, drepo.MarketSpot, req.Coin, req.From, req.To, req.Limit)
}

// ETFVolumes returns ETF daily bars. Flow splits were estimated at sync
// time, so this is a plain range read.
func (s *MarketService) ETFVolumes(ctx context.Context, req models.ETFRequest) ([]models.DailyBar, error) {
	return s.bars.GetBars(ctx, drepo.MarketETF, req.Coin, util.DaysAgo(req.Days), "", 0)
}

// Cumulative returns running buy/sell/net USD totals over the trailing
// period, one point per stored bar.
func (s *MarketService) Cumulative(ctx context.Context, req models.CumulativeRequest) ([]models.CumulativePoint, error) {
	bars, err := s.bars.GetBars(ctx, drepo.MarketSpot, req.Coin, util.DaysAgo(req.Days), "", 0)
	if err != nil {
		return nil, err
	}
	out := make([]models.CumulativePoint, len(bars))
	var net, buy, sell float64
	for i, b := range bars {
		net += b.NetVolumeUSD
		buy += b.BuyVolumeUSD
		sell += b.SellVolumeUSD
		out[i] = models.CumulativePoint{
			Date:              b.Date,
			NetVolumeUSD:      b.NetVolumeUSD,
			CumulativeNetUSD:  net,
			CumulativeBuyUSD:  buy,
			CumulativeSellUSD: sell,
		}
	}
	return out, nil
}

// Summary aggregates a coin's flow over the trailing period.
func (s *MarketService) Summary(ctx context.Context, req models.SummaryRequest) (models.VolumeSummary, error) {
	bars, err := s.bars.GetBars(ctx, drepo.MarketSpot, req.Coin, util.DaysAgo(req.Days), "", 0)
	if err != nil {
		return models.VolumeSummary{}, err
	}

	out := models.VolumeSummary{Coin: req.Coin, Days: req.Days, BarCount: len(bars)}
	for _, b := range bars {
		out.TotalVolume += b.TotalVolume
		out.TotalBuyUSD += b.BuyVolumeUSD
		out.TotalSellUSD += b.SellVolumeUSD
		out.NetVolumeUSD += b.NetVolumeUSD
	}
	if len(bars) > 0 {
		out.AvgDailyVolume = out.TotalVolume / float64(len(bars))
		last := bars[len(bars)-1]
		out.LastClose = last.Close
		out.LastDate = last.Date
	}
	return out, nil
}

// Indicators computes the full indicator bundle over the trailing window.
// The volume z-score rides along so charts can overlay anomaly context.
func (s *MarketService) Indicators(ctx context.Context, req models.IndicatorsRequest) (models.IndicatorSeries, error) {
	// extend the read window so lookback-heavy series (MACD slow+signal,
	// anomaly window) are defined over the requested days
	lookback := req.Days + s.params.MACDSlow + s.params.MACDSignal + s.params.AnomalyWindow
	bars, err := s.bars.GetLatestNBars(ctx, drepo.MarketSpot, req.Coin, lookback)
	if err != nil {
		return models.IndicatorSeries{}, err
	}
	if len(bars) == 0 {
		return models.IndicatorSeries{}, fmt.Errorf("indicators %s: %w", req.Coin, engine.ErrInsufficientData)
	}

	series, err := indicators.Compute(bars, s.params)
	if err != nil {
		return models.IndicatorSeries{}, fmt.Errorf("indicators %s: %w", req.Coin, err)
	}
	series.VolumeZScore = anomaly.ZScoreSeries(models.TotalVolumes(bars), s.params.AnomalyWindow)

	if len(bars) > req.Days {
		series = trimSeries(series, len(bars)-req.Days)
	}
	return series, nil
}

// Coins lists the coins present in the spot table.
func (s *MarketService) Coins(ctx context.Context) ([]string, error) {
	return s.bars.Coins(ctx, drepo.MarketSpot)
}

// trimSeries drops the first n entries from every series in the bundle.
func trimSeries(in models.IndicatorSeries, n int) models.IndicatorSeries {
	cut := func(s models.Series) models.Series {
		if n >= len(s) {
			return models.Series{}
		}
		return s[n:]
	}
	return models.IndicatorSeries{
		Dates:          in.Dates[min(n, len(in.Dates)):],
		VWAP:           cut(in.VWAP),
		RSI:            cut(in.RSI),
		MACD:           cut(in.MACD),
		MACDSignal:     cut(in.MACDSignal),
		MACDHist:       cut(in.MACDHist),
		BollingerUpper: cut(in.BollingerUpper),
		BollingerMid:   cut(in.BollingerMid),
		BollingerLower: cut(in.BollingerLower),
		OBV:            cut(in.OBV),
		VolumeZScore:   cut(in.VolumeZScore),
	}
}
