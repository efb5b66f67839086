// Package flow estimates the buy/sell split of bars that carry only
// aggregate volume (ETF feeds have no taker-side data). This is a heuristic
// estimator, not a measurement: the close's position inside the day's range
// proxies buying pressure, blended with the prior day's estimate to damp
// single-day noise.
package flow

import "CoinPulse/internal/domain/models"

// neutralPos is the split used for flat-range days and as the prior seed.
const neutralPos = 0.5

// Estimate fills the buy/sell/net volume fields of each bar from its OHLC
// and total volume. blendWeight is the share of the current day's close
// position in the blend; the remainder comes from the previous day's
// blended estimate. Bars must be ordered by date. The input is not
// mutated; a new slice is returned.
func Estimate(bars []models.DailyBar, blendWeight float64) []models.DailyBar {
	out := make([]models.DailyBar, len(bars))
	prior := neutralPos
	for i, b := range bars {
		pos := closePosition(b)
		pos = blendWeight*pos + (1-blendWeight)*prior
		prior = pos

		b.BuyVolume = b.TotalVolume * pos
		b.SellVolume = b.TotalVolume * (1 - pos)
		b.NetVolume = b.BuyVolume - b.SellVolume

		b.BuyVolumeUSD = b.BuyVolume * b.Close
		b.SellVolumeUSD = b.SellVolume * b.Close
		b.NetVolumeUSD = b.NetVolume * b.Close
		out[i] = b
	}
	return out
}

// closePosition is where the close sits inside the day's range, in [0,1].
// A flat-range day (high == low) is a neutral split, not an error.
func closePosition(b models.DailyBar) float64 {
	if b.High <= b.Low {
		return neutralPos
	}
	pos := (b.Close - b.Low) / (b.High - b.Low)
	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}
