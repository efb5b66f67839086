// Package indicators computes technical indicator series over ordered daily
// bars. All functions are pure and total over well-formed input: short
// inputs yield NaN-leading series, zero-length input is the only error case.
package indicators

import (
	"math"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/engine"
)

// VWAP computes the cumulative volume-weighted average price over the full
// supplied window (a running fair-value line, not a rolling window). Typical
// price is (high+low+close)/3; days before any volume has traded fall back
// to the close.
func VWAP(bars []models.DailyBar) (models.Series, error) {
	if len(bars) == 0 {
		return nil, engine.ErrInsufficientData
	}
	out := make(models.Series, len(bars))
	var cumPV, cumVol float64
	for i, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3
		cumPV += typical * b.TotalVolume
		cumVol += b.TotalVolume
		if cumVol > 0 {
			out[i] = cumPV / cumVol
		} else {
			out[i] = b.Close
		}
	}
	return out, nil
}

// RSI computes the relative strength index with Wilder smoothing: the first
// value averages gains/losses over the initial period, subsequent values
// smooth with avg = (avg*(period-1) + current) / period. Entries before
// `period` prior closes exist are NaN. A window with zero average loss is
// fully bullish: RSI = 100, never a division fault.
func RSI(closes []float64, period int) (models.Series, error) {
	if period <= 0 {
		return nil, engine.ErrInvalidConfig
	}
	if len(closes) == 0 {
		return nil, engine.ErrInsufficientData
	}
	out := undefined(len(closes))
	if len(closes) < period+1 {
		return out, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// EMA computes an exponential moving average with smoothing 2/(period+1),
// seeded by the simple moving average of the first `period` points. Entries
// before the seed are NaN.
func EMA(values []float64, period int) models.Series {
	out := undefined(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for _, v := range values[:period] {
		sum += v
	}
	out[period-1] = sum / float64(period)
	mult := 2 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*mult + out[i-1]
	}
	return out
}

// MACD computes the MACD line (fast EMA - slow EMA), its signal line (EMA of
// the defined MACD values over the signal period) and the histogram
// (line - signal).
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist models.Series, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return nil, nil, nil, engine.ErrInvalidConfig
	}
	if len(closes) == 0 {
		return nil, nil, nil, engine.ErrInsufficientData
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line = undefined(len(closes))
	for i := range closes {
		if fastEMA.Defined(i) && slowEMA.Defined(i) {
			line[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal is an EMA over only the defined stretch of the MACD line.
	sig = undefined(len(closes))
	defined := make([]float64, 0, len(closes))
	offset := -1
	for i, v := range line {
		if !math.IsNaN(v) {
			if offset < 0 {
				offset = i
			}
			defined = append(defined, v)
		}
	}
	if offset >= 0 {
		sigEMA := EMA(defined, signal)
		for i, v := range sigEMA {
			sig[offset+i] = v
		}
	}

	hist = undefined(len(closes))
	for i := range closes {
		if line.Defined(i) && sig.Defined(i) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist, nil
}

// Bollinger computes the middle band (SMA) and upper/lower bands at
// mid +/- stdDev * population standard deviation of each window. A
// zero-variance window collapses all three bands onto the SMA.
func Bollinger(closes []float64, period int, stdDev float64) (upper, mid, lower models.Series, err error) {
	if period <= 0 || stdDev <= 0 {
		return nil, nil, nil, engine.ErrInvalidConfig
	}
	if len(closes) == 0 {
		return nil, nil, nil, engine.ErrInsufficientData
	}
	upper = undefined(len(closes))
	mid = undefined(len(closes))
	lower = undefined(len(closes))

	var sum, sumSq float64
	for i, v := range closes {
		sum += v
		sumSq += v * v
		if i >= period {
			old := closes[i-period]
			sum -= old
			sumSq -= old * old
		}
		if i < period-1 {
			continue
		}
		n := float64(period)
		sma := sum / n
		variance := sumSq/n - sma*sma
		if variance < 0 {
			variance = 0 // float cancellation on near-constant windows
		}
		sd := math.Sqrt(variance)
		mid[i] = sma
		upper[i] = sma + stdDev*sd
		lower[i] = sma - stdDev*sd
	}
	return upper, mid, lower, nil
}

// OBV computes on-balance volume: seeded with the first bar's volume, then
// adds volume on up-closes, subtracts on down-closes, holds on flat closes.
func OBV(closes, volumes []float64) (models.Series, error) {
	if len(closes) == 0 || len(closes) != len(volumes) {
		return nil, engine.ErrInsufficientData
	}
	out := make(models.Series, len(closes))
	out[0] = volumes[0]
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out, nil
}

// Compute derives the full indicator bundle for a bar sequence. The volume
// z-score series is filled by the caller from the anomaly pass.
func Compute(bars []models.DailyBar, p engine.Params) (models.IndicatorSeries, error) {
	var out models.IndicatorSeries
	if len(bars) == 0 {
		return out, engine.ErrInsufficientData
	}
	closes := models.Closes(bars)
	volumes := models.TotalVolumes(bars)

	out.Dates = make([]string, len(bars))
	for i, b := range bars {
		out.Dates[i] = b.Date
	}

	var err error
	if out.VWAP, err = VWAP(bars); err != nil {
		return out, err
	}
	if out.RSI, err = RSI(closes, p.RSIPeriod); err != nil {
		return out, err
	}
	if out.MACD, out.MACDSignal, out.MACDHist, err = MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal); err != nil {
		return out, err
	}
	if out.BollingerUpper, out.BollingerMid, out.BollingerLower, err = Bollinger(closes, p.BollingerPeriod, p.BollingerStdDev); err != nil {
		return out, err
	}
	if out.OBV, err = OBV(closes, volumes); err != nil {
		return out, err
	}
	return out, nil
}

func undefined(n int) models.Series {
	out := make(models.Series, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
