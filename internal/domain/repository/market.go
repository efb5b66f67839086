package repository

// Market distinguishes which venue a bar series came from.
type Market string

const (
	MarketSpot Market = "spot"
	MarketETF  Market = "etf"
)

// IsValidMarket returns true if m is a supported market.
func IsValidMarket(m Market) bool {
	switch m {
	case MarketSpot, MarketETF:
		return true
	default:
		return false
	}
}

// DefaultMarket returns the default market.
func DefaultMarket() Market { return MarketSpot }

// NormalizeMarket converts a raw string to a valid market (or default).
func NormalizeMarket(s string) Market {
	if s == "" {
		return DefaultMarket()
	}
	m := Market(s)
	if IsValidMarket(m) {
		return m
	}
	return DefaultMarket()
}
