package models

import (
	"encoding/json"
	"sort"
)

// Severity ranks how urgent an alert is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank maps severity to a sortable weight; higher is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool { return s.Rank() > 0 }

// AlertKind tags the alert taxonomy. Each kind carries a typed detail
// payload rather than a bag of nullable fields.
type AlertKind string

const (
	AlertWhaleBuy          AlertKind = "whale_buy"
	AlertWhaleSell         AlertKind = "whale_sell"
	AlertWhaleAccumulation AlertKind = "whale_accumulation"
	AlertWhaleDistribution AlertKind = "whale_distribution"

	AlertVolumeSpike     AlertKind = "volume_spike"
	AlertBuyVolumeSpike  AlertKind = "buy_volume_spike"
	AlertSellVolumeSpike AlertKind = "sell_volume_spike"

	AlertBullishDivergence AlertKind = "bullish_divergence"
	AlertBearishDivergence AlertKind = "bearish_divergence"

	AlertRSIOversold   AlertKind = "rsi_oversold"
	AlertRSIOverbought AlertKind = "rsi_overbought"

	AlertHighFuturesPremium     AlertKind = "high_futures_premium"
	AlertFuturesDiscount        AlertKind = "futures_discount"
	AlertExtremeFunding         AlertKind = "extreme_funding_rate"
	AlertExtremeNegativeFunding AlertKind = "extreme_negative_funding"
	AlertBackwardation          AlertKind = "backwardation_signal"
	AlertContango               AlertKind = "contango_warning"
)

// alertIcons is the presentation mapping keyed by kind. Pure lookup, no
// side effects; unknown kinds fall back to a neutral marker.
var alertIcons = map[AlertKind]string{
	AlertWhaleBuy:               "🐋",
	AlertWhaleSell:              "🐋",
	AlertWhaleAccumulation:      "📈",
	AlertWhaleDistribution:      "📉",
	AlertVolumeSpike:            "⚡",
	AlertBuyVolumeSpike:         "⚡",
	AlertSellVolumeSpike:        "⚡",
	AlertBullishDivergence:      "🔀",
	AlertBearishDivergence:      "🔀",
	AlertRSIOversold:            "🟢",
	AlertRSIOverbought:          "🔴",
	AlertHighFuturesPremium:     "♨️",
	AlertFuturesDiscount:        "🧊",
	AlertExtremeFunding:         "💸",
	AlertExtremeNegativeFunding: "💸",
	AlertBackwardation:          "↩️",
	AlertContango:               "↪️",
}

// Icon returns the display marker for the kind.
func (k AlertKind) Icon() string {
	if icon, ok := alertIcons[k]; ok {
		return icon
	}
	return "•"
}

// AlertDetail is the typed payload carried by one alert kind family.
type AlertDetail interface {
	alertDetail()
}

// WhaleDetail accompanies whale_* alerts.
type WhaleDetail struct {
	SizeClass string  `json:"size_class"`
	ValueUSD  float64 `json:"value_usd"`
	Volume    float64 `json:"volume"`
	Price     float64 `json:"price"`
}

// SpikeDetail accompanies *_volume_spike alerts.
type SpikeDetail struct {
	ZScore    float64 `json:"zscore"`
	Volume    float64 `json:"volume"`
	AvgVolume float64 `json:"avg_volume"`
	ValueUSD  float64 `json:"value_usd,omitempty"`
	Price     float64 `json:"price"`
}

// DivergenceDetail accompanies bullish/bearish divergence alerts.
type DivergenceDetail struct {
	Price     float64 `json:"price"`
	NetVolume float64 `json:"net_volume"`
}

// RSIDetail accompanies rsi_oversold/rsi_overbought alerts.
type RSIDetail struct {
	RSI   float64 `json:"rsi"`
	Price float64 `json:"price"`
}

// FuturesDetail accompanies futures market alerts.
type FuturesDetail struct {
	PremiumPct        float64 `json:"premium_pct"`
	FundingRate       float64 `json:"funding_rate"`
	FundingAnnualized float64 `json:"funding_rate_annualized"`
	SpotPrice         float64 `json:"spot_price"`
	FuturesPrice      float64 `json:"futures_price"`
}

func (WhaleDetail) alertDetail()      {}
func (SpikeDetail) alertDetail()      {}
func (DivergenceDetail) alertDetail() {}
func (RSIDetail) alertDetail()        {}
func (FuturesDetail) alertDetail()    {}

// Alert is one detected smart-money signal. The engine emits alerts without
// identity; the persistence layer assigns IDs and owns the acknowledged
// flag. An alert is never mutated after creation.
type Alert struct {
	Coin        string      `json:"coin"`
	Date        string      `json:"date"`
	Kind        AlertKind   `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Detail      AlertDetail `json:"detail,omitempty"`
}

// AlertKey is the deduplication key: at most one alert exists per key.
type AlertKey struct {
	Coin string
	Date string
	Kind AlertKind
}

// Key returns the dedup key of the alert.
func (a Alert) Key() AlertKey {
	return AlertKey{Coin: a.Coin, Date: a.Date, Kind: a.Kind}
}

// StoredAlert is the flattened persistence/transport form of an Alert: the
// typed payload is projected onto sparse numeric columns plus a metadata
// JSON blob, and the store-owned fields (ID, Acknowledged) appear.
type StoredAlert struct {
	ID           int64     `json:"id"`
	Coin         string    `json:"coin"`
	Date         string    `json:"date"`
	Kind         AlertKind `json:"type"`
	Severity     Severity  `json:"severity"`
	Description  string    `json:"description"`
	ValueUSD     float64   `json:"value_usd,omitempty"`
	Volume       float64   `json:"volume,omitempty"`
	ZScore       float64   `json:"zscore,omitempty"`
	RSI          float64   `json:"rsi,omitempty"`
	Price        float64   `json:"price,omitempty"`
	Metadata     string    `json:"metadata,omitempty"`
	Acknowledged bool      `json:"acknowledged"`
}

// Flatten projects the alert onto its storage columns.
func (a Alert) Flatten() StoredAlert {
	row := StoredAlert{
		Coin:        a.Coin,
		Date:        a.Date,
		Kind:        a.Kind,
		Severity:    a.Severity,
		Description: a.Description,
	}
	switch d := a.Detail.(type) {
	case WhaleDetail:
		row.ValueUSD = d.ValueUSD
		row.Volume = d.Volume
		row.Price = d.Price
	case SpikeDetail:
		row.ZScore = d.ZScore
		row.Volume = d.Volume
		row.ValueUSD = d.ValueUSD
		row.Price = d.Price
	case DivergenceDetail:
		row.Volume = d.NetVolume
		row.Price = d.Price
	case RSIDetail:
		row.RSI = d.RSI
		row.Price = d.Price
	case FuturesDetail:
		row.Price = d.FuturesPrice
	}
	if a.Detail != nil {
		if b, err := json.Marshal(a.Detail); err == nil {
			row.Metadata = string(b)
		}
	}
	return row
}

// SortAlerts orders alerts by severity (critical first), then recency
// (latest date first), then kind for a stable presentation order.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity.Rank() != alerts[j].Severity.Rank() {
			return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
		}
		if alerts[i].Date != alerts[j].Date {
			return alerts[i].Date > alerts[j].Date
		}
		return alerts[i].Kind < alerts[j].Kind
	})
}
