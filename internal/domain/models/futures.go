package models

// FuturesSnapshot pairs a spot and futures price observation with derived
// premium and funding figures for one day.
type FuturesSnapshot struct {
	Coin string `json:"coin"`
	Date string `json:"date"` // YYYY-MM-DD, UTC

	SpotPrice    float64 `json:"spot_price"`
	FuturesPrice float64 `json:"futures_price"`
	PremiumPct   float64 `json:"premium_pct"` // (futures-spot)/spot * 100

	FundingRate           float64 `json:"funding_rate"`
	FundingRateAnnualized float64 `json:"funding_rate_annualized"` // percent

	OpenInterest float64 `json:"open_interest"`
}

// LiquidationZone is an approximate liquidation price band for one leverage
// tier. The estimate ignores maintenance margin; it marks where a position
// opened at the reference price would be fully underwater.
type LiquidationZone struct {
	Leverage  int     `json:"leverage"`
	LongZone  float64 `json:"long_liquidation_zone"`
	ShortZone float64 `json:"short_liquidation_zone"`
}

// LiquidationEstimate is the set of zones around a reference price.
type LiquidationEstimate struct {
	Coin           string            `json:"coin"`
	ReferencePrice float64           `json:"reference_price"`
	Zones          []LiquidationZone `json:"zones"`
	Estimate       bool              `json:"estimate"` // always true; not exchange data
}
