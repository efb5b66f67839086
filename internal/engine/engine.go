// Package engine holds the shared configuration and error taxonomy for the
// pure analytics passes (indicators, flow estimation, anomaly detection,
// whale classification, futures analytics). Every pass is deterministic and
// side-effect free; parameters are read-only for the duration of a scan.
package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData marks a sequence too short for the requested
	// computation. Recoverable: callers get partial output where possible.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidConfig marks a caller bug (non-positive period, zero
	// stddev multiplier, unordered thresholds). Never retried.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// WhaleThresholds are the USD tier boundaries, inclusive at the lower bound.
type WhaleThresholds struct {
	Small  float64 `yaml:"small"`
	Medium float64 `yaml:"medium"`
	Large  float64 `yaml:"large"`
	Mega   float64 `yaml:"mega"`
}

// Params is the configuration bundle consumed per scan.
type Params struct {
	RSIPeriod int `yaml:"rsi_period"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	BollingerPeriod int     `yaml:"bollinger_period"`
	BollingerStdDev float64 `yaml:"bollinger_stddev"`

	ZScoreThreshold float64 `yaml:"zscore_threshold"`
	AnomalyWindow   int     `yaml:"anomaly_window"`
	DivergenceSpan  int     `yaml:"divergence_span"`

	// FlowBlendWeight is the weight of the current day's close position in
	// the ETF flow estimate; the remainder comes from the prior estimate.
	FlowBlendWeight float64 `yaml:"flow_blend_weight"`

	Whale WhaleThresholds `yaml:"whale_thresholds"`

	// FundingEventsPerDay converts a per-event funding rate into an
	// annualized percentage (events per day x 365 x 100).
	FundingEventsPerDay float64 `yaml:"funding_events_per_day"`
	PremiumAlertPct     float64 `yaml:"premium_alert_pct"`
	ExtremeFundingPct   float64 `yaml:"extreme_funding_pct"`

	// PersistenceBars is how many consecutive snapshots must agree before
	// backwardation/contango structure alerts fire.
	PersistenceBars int `yaml:"persistence_bars"`

	LeverageTiers []int `yaml:"leverage_tiers"`
}

// Defaults returns the production parameter set.
func Defaults() Params {
	return Params{
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
		ZScoreThreshold: 2.5,
		AnomalyWindow:   30,
		DivergenceSpan:  4,
		FlowBlendWeight: 0.7,
		Whale: WhaleThresholds{
			Small:  500_000,
			Medium: 1_000_000,
			Large:  5_000_000,
			Mega:   10_000_000,
		},
		FundingEventsPerDay: 3,
		PremiumAlertPct:     0.5,
		ExtremeFundingPct:   100,
		PersistenceBars:     3,
		LeverageTiers:       []int{10, 25, 50, 100},
	}
}

// Validate surfaces caller bugs before any scan runs.
func (p Params) Validate() error {
	if p.RSIPeriod <= 0 {
		return fmt.Errorf("%w: rsi_period must be positive, got %d", ErrInvalidConfig, p.RSIPeriod)
	}
	if p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0 {
		return fmt.Errorf("%w: macd periods must be positive", ErrInvalidConfig)
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("%w: macd_fast (%d) must be below macd_slow (%d)", ErrInvalidConfig, p.MACDFast, p.MACDSlow)
	}
	if p.BollingerPeriod <= 0 {
		return fmt.Errorf("%w: bollinger_period must be positive, got %d", ErrInvalidConfig, p.BollingerPeriod)
	}
	if p.BollingerStdDev <= 0 {
		return fmt.Errorf("%w: bollinger_stddev must be positive, got %v", ErrInvalidConfig, p.BollingerStdDev)
	}
	if p.ZScoreThreshold <= 0 {
		return fmt.Errorf("%w: zscore_threshold must be positive, got %v", ErrInvalidConfig, p.ZScoreThreshold)
	}
	if p.AnomalyWindow < 30 {
		return fmt.Errorf("%w: anomaly_window must be at least 30, got %d", ErrInvalidConfig, p.AnomalyWindow)
	}
	if p.DivergenceSpan <= 0 {
		return fmt.Errorf("%w: divergence_span must be positive, got %d", ErrInvalidConfig, p.DivergenceSpan)
	}
	if p.FlowBlendWeight <= 0 || p.FlowBlendWeight > 1 {
		return fmt.Errorf("%w: flow_blend_weight must be in (0, 1], got %v", ErrInvalidConfig, p.FlowBlendWeight)
	}
	w := p.Whale
	if w.Small <= 0 || w.Medium <= w.Small || w.Large <= w.Medium || w.Mega <= w.Large {
		return fmt.Errorf("%w: whale thresholds must be positive and strictly ascending", ErrInvalidConfig)
	}
	if p.FundingEventsPerDay <= 0 {
		return fmt.Errorf("%w: funding_events_per_day must be positive, got %v", ErrInvalidConfig, p.FundingEventsPerDay)
	}
	if p.PremiumAlertPct <= 0 {
		return fmt.Errorf("%w: premium_alert_pct must be positive, got %v", ErrInvalidConfig, p.PremiumAlertPct)
	}
	if p.ExtremeFundingPct <= 0 {
		return fmt.Errorf("%w: extreme_funding_pct must be positive, got %v", ErrInvalidConfig, p.ExtremeFundingPct)
	}
	if p.PersistenceBars <= 0 {
		return fmt.Errorf("%w: persistence_bars must be positive, got %d", ErrInvalidConfig, p.PersistenceBars)
	}
	for _, lev := range p.LeverageTiers {
		if lev <= 0 {
			return fmt.Errorf("%w: leverage tiers must be positive, got %d", ErrInvalidConfig, lev)
		}
	}
	return nil
}
