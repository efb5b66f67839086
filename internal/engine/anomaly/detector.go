// Package anomaly flags statistically unusual volume and price/flow
// divergence over a rolling lookback window. Degenerate windows (zero
// variance) resolve to a neutral z-score of 0, never an error: halting a
// scan over one flat day would drop valid analysis for the rest.
package anomaly

import (
	"math"

	"CoinPulse/internal/domain/models"
)

// RSI extremes, computed once per bar so overlapping scan windows cannot
// emit duplicates.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// rollingStats maintains mean and population standard deviation over a
// fixed-size ring, updated in O(1) per bar so a scan stays linear in the
// lookback length.
type rollingStats struct {
	ring  []float64
	next  int
	count int
	sum   float64
	sumSq float64
}

func newRollingStats(window int) *rollingStats {
	return &rollingStats{ring: make([]float64, window)}
}

func (r *rollingStats) push(v float64) {
	if r.count == len(r.ring) {
		old := r.ring[r.next]
		r.sum -= old
		r.sumSq -= old * old
	} else {
		r.count++
	}
	r.ring[r.next] = v
	r.sum += v
	r.sumSq += v * v
	r.next = (r.next + 1) % len(r.ring)
}

func (r *rollingStats) full() bool { return r.count == len(r.ring) }

func (r *rollingStats) mean() float64 {
	if r.count == 0 {
		return 0
	}
	return r.sum / float64(r.count)
}

func (r *rollingStats) stdDev() float64 {
	if r.count == 0 {
		return 0
	}
	n := float64(r.count)
	m := r.sum / n
	variance := r.sumSq/n - m*m
	if variance <= 0 {
		return 0 // zero-variance window, or float cancellation
	}
	return math.Sqrt(variance)
}

// ZScore is the guarded z-score: a zero-deviation baseline yields exactly 0
// so degenerate windows never produce a false anomaly.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev <= 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// ZScoreSeries computes a rolling z-score of each value against its own
// trailing window (window includes the current value). Entries before a
// full window are NaN. Used for charting alongside the indicator bundle.
func ZScoreSeries(values []float64, window int) models.Series {
	out := make(models.Series, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 1 || len(values) < window {
		return out
	}
	stats := newRollingStats(window)
	for i, v := range values {
		stats.push(v)
		if stats.full() {
			out[i] = ZScore(v, stats.mean(), stats.stdDev())
		}
	}
	return out
}

// Spike is one flagged volume anomaly.
type Spike struct {
	Index     int
	Kind      models.AlertKind
	ZScore    float64
	AvgVolume float64
}

// Signal is a per-bar flag without magnitude (divergence, RSI extremes).
type Signal struct {
	Index int
	Kind  models.AlertKind
}

// Detector runs the statistical passes with a fixed window and threshold.
type Detector struct {
	window    int
	threshold float64
}

// New creates a detector. Histories shorter than window bars yield no
// anomaly output; window is validated upstream to be at least 30.
func New(window int, threshold float64) *Detector {
	return &Detector{window: window, threshold: threshold}
}

// Spikes flags bars whose |net_volume_usd| sits more than the threshold
// above the mean of the trailing window. The window includes the bar under
// test, the same shape as ZScoreSeries: an outlier against an otherwise
// constant baseline inflates its own window's deviation and still scores
// far above threshold, while a fully flat window resolves to z=0. The sign
// of net volume picks the buy/sell subtype.
func (d *Detector) Spikes(bars []models.DailyBar) []Spike {
	if len(bars) < d.window {
		return nil
	}
	var out []Spike
	stats := newRollingStats(d.window)
	for i, b := range bars {
		v := math.Abs(b.NetVolumeUSD)
		stats.push(v)
		if !stats.full() {
			continue
		}
		z := ZScore(v, stats.mean(), stats.stdDev())
		if z > d.threshold {
			kind := models.AlertVolumeSpike
			switch {
			case b.NetVolume > 0:
				kind = models.AlertBuyVolumeSpike
			case b.NetVolume < 0:
				kind = models.AlertSellVolumeSpike
			}
			out = append(out, Spike{Index: i, Kind: kind, ZScore: z, AvgVolume: stats.mean()})
		}
	}
	return out
}

// Divergence compares the price trend over `span` bars with the net volume
// flow over the same stretch: falling price with net accumulation is
// bullish, rising price with net distribution is bearish.
func Divergence(closes, netVolumes []float64, span int) []Signal {
	if span <= 0 || len(closes) != len(netVolumes) || len(closes) <= span {
		return nil
	}
	var out []Signal
	for i := span; i < len(closes); i++ {
		priceTrend := closes[i] - closes[i-span]
		var flow float64
		for j := i - span; j <= i; j++ {
			flow += netVolumes[j]
		}
		switch {
		case priceTrend < 0 && flow > 0:
			out = append(out, Signal{Index: i, Kind: models.AlertBullishDivergence})
		case priceTrend > 0 && flow < 0:
			out = append(out, Signal{Index: i, Kind: models.AlertBearishDivergence})
		}
	}
	return out
}

// RSIFlags marks oversold/overbought bars. Undefined (NaN) entries are
// skipped; each bar is judged exactly once.
func RSIFlags(rsi models.Series) []Signal {
	var out []Signal
	for i, v := range rsi {
		if !rsi.Defined(i) {
			continue
		}
		switch {
		case v < rsiOversold:
			out = append(out, Signal{Index: i, Kind: models.AlertRSIOversold})
		case v > rsiOverbought:
			out = append(out, Signal{Index: i, Kind: models.AlertRSIOverbought})
		}
	}
	return out
}

// SpikeSeverity escalates with how far outside the baseline the bar sits.
func SpikeSeverity(zscore float64) models.Severity {
	z := math.Abs(zscore)
	switch {
	case z > 3.5:
		return models.SeverityCritical
	case z > 3.0:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
