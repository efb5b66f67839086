package models

// Requests for the analytics HTTP endpoints. Defined in domain for
// consistency and reuse across handlers.

type VolumesRequest struct {
	Coin  string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	From  string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `query:"limit" json:"limit" default:"365" validate:"gte=1,lte=5000"`
}

type SummaryRequest struct {
	Coin string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	Days int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=3650"`
}

type IndicatorsRequest struct {
	Coin string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	Days int    `query:"days" json:"days" default:"180" validate:"gte=1,lte=3650"`
}

type ETFRequest struct {
	Coin string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	Days int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=3650"`
}

type CumulativeRequest struct {
	Coin string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	Days int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=3650"`
}

type ExportRequest struct {
	Coin string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	From string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type AlertsRequest struct {
	Coin     string `query:"coin" json:"coin" validate:"omitempty,alphanum,uppercase"`
	Severity string `query:"severity" json:"severity" validate:"omitempty,oneof=critical high medium low"`
	From     string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
	Acked    bool   `query:"acked" json:"acked"`
}

type AlertSummaryRequest struct {
	Coin string `query:"coin" json:"coin" validate:"omitempty,alphanum,uppercase"`
	Days int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=365"`
}

type ScanRequest struct {
	Coin         string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	LookbackDays int    `query:"lookback_days" json:"lookback_days" default:"30" validate:"gte=1,lte=365"`
}

type FuturesRequest struct {
	Coin  string `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	Limit int    `query:"limit" json:"limit" default:"30" validate:"gte=1,lte=365"`
}

type LiquidationRequest struct {
	Coin  string  `query:"coin" json:"coin" default:"BTC" validate:"required,alphanum,uppercase"`
	Price float64 `query:"price" json:"price" validate:"omitempty,gt=0"`
}

type SyncRequest struct {
	Coin string `query:"coin" json:"coin" validate:"omitempty,alphanum,uppercase"`
	Days int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=3650"`
}

// VolumeSummary aggregates a coin's flow over a period.
type VolumeSummary struct {
	Coin           string  `json:"coin"`
	Days           int     `json:"days"`
	BarCount       int     `json:"bar_count"`
	TotalVolume    float64 `json:"total_volume"`
	TotalBuyUSD    float64 `json:"total_buy_usd"`
	TotalSellUSD   float64 `json:"total_sell_usd"`
	NetVolumeUSD   float64 `json:"net_volume_usd"`
	AvgDailyVolume float64 `json:"avg_daily_volume"`
	LastClose      float64 `json:"last_close"`
	LastDate       string  `json:"last_date"`
}

// CumulativePoint is one day of running flow totals.
type CumulativePoint struct {
	Date              string  `json:"date"`
	NetVolumeUSD      float64 `json:"net_volume_usd"`
	CumulativeNetUSD  float64 `json:"cumulative_net_usd"`
	CumulativeBuyUSD  float64 `json:"cumulative_buy_usd"`
	CumulativeSellUSD float64 `json:"cumulative_sell_usd"`
}

// AlertSummary counts persisted alerts by severity and kind.
type AlertSummary struct {
	Coin       string            `json:"coin,omitempty"`
	Days       int               `json:"days"`
	Total      int               `json:"total"`
	BySeverity map[Severity]int  `json:"by_severity"`
	ByKind     map[AlertKind]int `json:"by_kind"`
}
