// Package futures derives premium/discount, annualized funding and
// liquidation-zone estimates from paired spot/futures observations.
package futures

import (
	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/engine"
)

// PremiumPct is the futures premium over spot in percent. Positive means
// the future trades rich (contango side), negative means discount. A zero
// spot price resolves to 0 rather than dividing.
func PremiumPct(spotPrice, futuresPrice float64) float64 {
	if spotPrice == 0 {
		return 0
	}
	return (futuresPrice - spotPrice) / spotPrice * 100
}

// AnnualizeFunding converts a per-event funding rate into an annualized
// percentage given the number of funding events per day (3 on most venues).
func AnnualizeFunding(rate, eventsPerDay float64) float64 {
	return rate * eventsPerDay * 365 * 100
}

// Snapshot assembles a derived snapshot from raw paired observations.
func Snapshot(coin, date string, spotPrice, futuresPrice, fundingRate, openInterest, eventsPerDay float64) models.FuturesSnapshot {
	return models.FuturesSnapshot{
		Coin:                  coin,
		Date:                  date,
		SpotPrice:             spotPrice,
		FuturesPrice:          futuresPrice,
		PremiumPct:            PremiumPct(spotPrice, futuresPrice),
		FundingRate:           fundingRate,
		FundingRateAnnualized: AnnualizeFunding(fundingRate, eventsPerDay),
		OpenInterest:          openInterest,
	}
}

// Flag is one futures market condition worth alerting on.
type Flag struct {
	Kind     models.AlertKind
	Severity models.Severity
	Snapshot models.FuturesSnapshot
}

// Analyzer evaluates snapshot sequences against configured thresholds.
type Analyzer struct {
	premiumAlertPct   float64
	extremeFundingPct float64
	persistenceBars   int
}

// NewAnalyzer builds an analyzer from the scan parameters.
func NewAnalyzer(p engine.Params) *Analyzer {
	return &Analyzer{
		premiumAlertPct:   p.PremiumAlertPct,
		extremeFundingPct: p.ExtremeFundingPct,
		persistenceBars:   p.PersistenceBars,
	}
}

// Flags evaluates the latest snapshot plus persistence structure over the
// trailing snapshots (ordered by date ascending). Premium and funding flags
// judge the latest observation only; backwardation/contango require the
// condition to persist across consecutive snapshots.
func (a *Analyzer) Flags(snaps []models.FuturesSnapshot) []Flag {
	if len(snaps) == 0 {
		return nil
	}
	latest := snaps[len(snaps)-1]
	var out []Flag

	switch {
	case latest.PremiumPct > a.premiumAlertPct:
		sev := models.SeverityMedium
		if latest.PremiumPct > 2*a.premiumAlertPct {
			sev = models.SeverityHigh
		}
		out = append(out, Flag{Kind: models.AlertHighFuturesPremium, Severity: sev, Snapshot: latest})
	case latest.PremiumPct < -a.premiumAlertPct:
		sev := models.SeverityMedium
		if latest.PremiumPct < -2*a.premiumAlertPct {
			sev = models.SeverityHigh
		}
		out = append(out, Flag{Kind: models.AlertFuturesDiscount, Severity: sev, Snapshot: latest})
	}

	switch {
	case latest.FundingRateAnnualized > a.extremeFundingPct:
		sev := models.SeverityHigh
		if latest.FundingRateAnnualized > 2*a.extremeFundingPct {
			sev = models.SeverityCritical
		}
		out = append(out, Flag{Kind: models.AlertExtremeFunding, Severity: sev, Snapshot: latest})
	case latest.FundingRateAnnualized < -a.extremeFundingPct:
		sev := models.SeverityHigh
		if latest.FundingRateAnnualized < -2*a.extremeFundingPct {
			sev = models.SeverityCritical
		}
		out = append(out, Flag{Kind: models.AlertExtremeNegativeFunding, Severity: sev, Snapshot: latest})
	}

	if len(snaps) >= a.persistenceBars {
		tail := snaps[len(snaps)-a.persistenceBars:]
		if allDiscount(tail) {
			out = append(out, Flag{Kind: models.AlertBackwardation, Severity: models.SeverityMedium, Snapshot: latest})
		} else if allPremiumRising(tail) {
			out = append(out, Flag{Kind: models.AlertContango, Severity: models.SeverityMedium, Snapshot: latest})
		}
	}
	return out
}

// allDiscount reports futures persistently below spot.
func allDiscount(snaps []models.FuturesSnapshot) bool {
	for _, s := range snaps {
		if s.FuturesPrice >= s.SpotPrice {
			return false
		}
	}
	return true
}

// allPremiumRising reports futures persistently above spot with the premium
// widening snapshot over snapshot.
func allPremiumRising(snaps []models.FuturesSnapshot) bool {
	for i, s := range snaps {
		if s.FuturesPrice <= s.SpotPrice {
			return false
		}
		if i > 0 && s.PremiumPct < snaps[i-1].PremiumPct {
			return false
		}
	}
	return true
}

// Liquidations estimates liquidation price zones for each leverage tier:
// long ~ price*(1-1/L), short ~ price*(1+1/L). The estimate ignores
// maintenance margin and is labeled as such in the output.
func Liquidations(coin string, price float64, tiers []int) models.LiquidationEstimate {
	zones := make([]models.LiquidationZone, 0, len(tiers))
	for _, lev := range tiers {
		if lev <= 0 {
			continue
		}
		move := 1 / float64(lev)
		zones = append(zones, models.LiquidationZone{
			Leverage:  lev,
			LongZone:  price * (1 - move),
			ShortZone: price * (1 + move),
		})
	}
	return models.LiquidationEstimate{
		Coin:           coin,
		ReferencePrice: price,
		Zones:          zones,
		Estimate:       true,
	}
}
