package models

// DailyBar is one day of price and taker-flow data for a single asset.
// Spot bars carry real taker buy/sell volume from the exchange; ETF bars
// carry estimated splits (see internal/engine/flow). Immutable once built:
// one bar per (coin, date).
type DailyBar struct {
	Coin string `json:"coin"`
	Date string `json:"date"` // YYYY-MM-DD, UTC

	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`

	TotalVolume float64 `json:"total_volume"`
	BuyVolume   float64 `json:"buy_volume"`
	SellVolume  float64 `json:"sell_volume"`
	NetVolume   float64 `json:"net_volume"` // buy - sell

	BuyVolumeUSD  float64 `json:"buy_volume_usd"`
	SellVolumeUSD float64 `json:"sell_volume_usd"`
	NetVolumeUSD  float64 `json:"net_volume_usd"`
}

// Closes extracts the closing price series from bars ordered by date.
func Closes(bars []DailyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// TotalVolumes extracts the total volume series.
func TotalVolumes(bars []DailyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.TotalVolume
	}
	return out
}

// NetVolumes extracts the net volume series.
func NetVolumes(bars []DailyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.NetVolume
	}
	return out
}
