package usecase

import (
	"context"
	"fmt"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/engine"
	enginefutures "CoinPulse/internal/engine/futures"
)

// futuresDerive fills the derived fields of a raw snapshot.
func futuresDerive(snap models.FuturesSnapshot, p engine.Params) models.FuturesSnapshot {
	snap.PremiumPct = enginefutures.PremiumPct(snap.SpotPrice, snap.FuturesPrice)
	snap.FundingRateAnnualized = enginefutures.AnnualizeFunding(snap.FundingRate, p.FundingEventsPerDay)
	return snap
}

// FuturesService serves futures snapshot history and liquidation estimates.
type FuturesService struct {
	store  drepo.FuturesStore
	bars   drepo.BarStore
	params engine.Params
}

// NewFuturesService creates the query service.
func NewFuturesService(store drepo.FuturesStore, bars drepo.BarStore, params engine.Params) *FuturesService {
	return &FuturesService{store: store, bars: bars, params: params}
}

// Snapshots returns the newest snapshots in ascending date order.
func (s *FuturesService) Snapshots(ctx context.Context, req models.FuturesRequest) ([]models.FuturesSnapshot, error) {
	return s.store.GetLatestN(ctx, req.Coin, req.Limit)
}

// Liquidation estimates liquidation zones around a reference price. With no
// explicit price the latest futures snapshot is used, falling back to the
// latest spot close.
func (s *FuturesService) Liquidation(ctx context.Context, req models.LiquidationRequest) (models.LiquidationEstimate, error) {
	price := req.Price
	if price <= 0 {
		snaps, err := s.store.GetLatestN(ctx, req.Coin, 1)
		if err != nil {
			return models.LiquidationEstimate{}, err
		}
		if len(snaps) > 0 {
			price = snaps[0].FuturesPrice
		}
	}
	if price <= 0 {
		bars, err := s.bars.GetLatestNBars(ctx, drepo.MarketSpot, req.Coin, 1)
		if err != nil {
			return models.LiquidationEstimate{}, err
		}
		if len(bars) > 0 {
			price = bars[0].Close
		}
	}
	if price <= 0 {
		return models.LiquidationEstimate{}, fmt.Errorf("liquidation %s: no reference price available", req.Coin)
	}
	return enginefutures.Liquidations(req.Coin, price, s.params.LeverageTiers), nil
}
