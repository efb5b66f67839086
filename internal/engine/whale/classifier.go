// Package whale classifies absolute USD flow magnitude into severity tiers.
// A pure threshold ladder: boundaries are inclusive at the lower bound of
// each tier, so a value sitting exactly on a boundary takes the higher tier.
package whale

import (
	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/engine"
)

// Class names a whale size tier.
type Class string

const (
	ClassSmall  Class = "small_whale"
	ClassMedium Class = "medium_whale"
	ClassLarge  Class = "large_whale"
	ClassMega   Class = "mega_whale"
)

// Severity maps a tier to its alert severity.
func (c Class) Severity() models.Severity {
	switch c {
	case ClassMega:
		return models.SeverityCritical
	case ClassLarge:
		return models.SeverityHigh
	case ClassMedium:
		return models.SeverityMedium
	case ClassSmall:
		return models.SeverityLow
	default:
		return models.SeverityLow
	}
}

// Classify buckets a USD value into a tier. The boolean is false when the
// value falls below the smallest tier (not whale-sized).
func Classify(valueUSD float64, t engine.WhaleThresholds) (Class, bool) {
	switch {
	case valueUSD >= t.Mega:
		return ClassMega, true
	case valueUSD >= t.Large:
		return ClassLarge, true
	case valueUSD >= t.Medium:
		return ClassMedium, true
	case valueUSD >= t.Small:
		return ClassSmall, true
	default:
		return "", false
	}
}
