package models

import (
	"bytes"
	"math"
	"strconv"
)

// Series is a float series aligned to a bar sequence. Leading entries may be
// NaN where the indicator lookback is not yet satisfied; NaN marshals to
// JSON null so clients see an explicit gap instead of a bogus number.
type Series []float64

// MarshalJSON renders NaN entries as null.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Defined reports whether the entry at i holds a computed value.
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// IndicatorSeries holds derived indicator values parallel to an input bar
// sequence; every series has the same length as the input.
type IndicatorSeries struct {
	Dates []string `json:"dates"`

	VWAP Series `json:"vwap"`
	RSI  Series `json:"rsi"`

	MACD       Series `json:"macd"`
	MACDSignal Series `json:"macd_signal"`
	MACDHist   Series `json:"macd_histogram"`

	BollingerUpper Series `json:"bb_upper"`
	BollingerMid   Series `json:"bb_middle"`
	BollingerLower Series `json:"bb_lower"`

	OBV Series `json:"obv"`

	VolumeZScore Series `json:"volume_zscore"`
}
