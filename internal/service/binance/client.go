// Package binance fetches daily spot klines and futures market state over
// Binance REST. Spot bars carry real taker-side volume, so no flow
// estimation is needed for them.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/util"
)

const (
	defaultBaseURL        = "https://api.binance.com"
	defaultFuturesBaseURL = "https://fapi.binance.com"

	klineLimit = 1000
)

// Client talks to the Binance spot and USD-M futures REST APIs.
type Client struct {
	baseURL        string
	futuresBaseURL string
	historyDays    int
	http           *xhttp.Client
}

type Config struct {
	BaseURL        string
	FuturesBaseURL string
	Timeout        time.Duration
	HistoryDays    int
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.FuturesBaseURL == "" {
		cfg.FuturesBaseURL = defaultFuturesBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 365
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		futuresBaseURL: cfg.FuturesBaseURL,
		historyDays:    cfg.HistoryDays,
		http:           xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

// symbol maps a coin to its USDT pair ("BTC" -> "BTCUSDT").
func symbol(coin string) string {
	return util.NormalizeCoin(coin) + "USDT"
}

// FetchDailyBars pulls 1d klines for the coin. With a non-empty `since` the
// fetch starts the day after it; otherwise it reaches back historyDays.
// Binance kline fields: open time, OHLC, base volume, close time, quote
// volume, trade count, taker buy base volume, taker buy quote volume.
func (c *Client) FetchDailyBars(ctx context.Context, coin, since string) ([]models.DailyBar, error) {
	start := time.Now().UTC().AddDate(0, 0, -c.historyDays)
	if t, ok := util.ParseDay(since); ok {
		start = t.AddDate(0, 0, 1)
	}

	var out []models.DailyBar
	cursor := start
	for {
		var raw [][]json.RawMessage
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    c.baseURL + "/api/v3/klines",
			QueryParams: map[string][]string{
				"symbol":    {symbol(coin)},
				"interval":  {"1d"},
				"startTime": {strconv.FormatInt(cursor.UnixMilli(), 10)},
				"limit":     {strconv.Itoa(klineLimit)},
			},
		}, &raw)
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", coin, err)
		}
		if len(raw) == 0 {
			break
		}

		for _, k := range raw {
			bar, err := parseKline(util.NormalizeCoin(coin), k)
			if err != nil {
				return nil, fmt.Errorf("binance klines %s: %w", coin, err)
			}
			out = append(out, bar)
		}

		if len(raw) < klineLimit {
			break
		}
		last, err := klineOpenTime(raw[len(raw)-1])
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", coin, err)
		}
		cursor = last.AddDate(0, 0, 1)
	}

	// the last kline is usually today's partial day; keep it, the next sync
	// upserts the final values over it
	return out, nil
}

func klineOpenTime(k []json.RawMessage) (time.Time, error) {
	if len(k) < 1 {
		return time.Time{}, fmt.Errorf("empty kline")
	}
	var ms int64
	if err := json.Unmarshal(k[0], &ms); err != nil {
		return time.Time{}, fmt.Errorf("open time: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func parseKline(coin string, k []json.RawMessage) (models.DailyBar, error) {
	if len(k) < 10 {
		return models.DailyBar{}, fmt.Errorf("short kline: %d fields", len(k))
	}
	openTime, err := klineOpenTime(k)
	if err != nil {
		return models.DailyBar{}, err
	}

	f := func(idx int, name string) (float64, error) {
		var s string
		if err := json.Unmarshal(k[idx], &s); err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	}

	open, err := f(1, "open")
	if err != nil {
		return models.DailyBar{}, err
	}
	high, err := f(2, "high")
	if err != nil {
		return models.DailyBar{}, err
	}
	low, err := f(3, "low")
	if err != nil {
		return models.DailyBar{}, err
	}
	cl, err := f(4, "close")
	if err != nil {
		return models.DailyBar{}, err
	}
	volume, err := f(5, "volume")
	if err != nil {
		return models.DailyBar{}, err
	}
	takerBuy, err := f(9, "taker buy volume")
	if err != nil {
		return models.DailyBar{}, err
	}

	buy := takerBuy
	sell := volume - takerBuy
	if sell < 0 {
		sell = 0
	}
	net := buy - sell

	return models.DailyBar{
		Coin:          coin,
		Date:          util.FormatDay(openTime),
		Open:          open,
		High:          high,
		Low:           low,
		Close:         cl,
		TotalVolume:   volume,
		BuyVolume:     buy,
		SellVolume:    sell,
		NetVolume:     net,
		BuyVolumeUSD:  buy * cl,
		SellVolumeUSD: sell * cl,
		NetVolumeUSD:  net * cl,
	}, nil
}

type spotTicker struct {
	Price string `json:"price"`
}

type premiumIndex struct {
	MarkPrice       string `json:"markPrice"`
	LastFundingRate string `json:"lastFundingRate"`
}

type openInterest struct {
	OpenInterest string `json:"openInterest"`
}

// FetchSnapshot assembles the raw futures observation for a coin: spot last
// price, mark price, current funding rate and open interest. Derived fields
// are left to the analytics layer.
func (c *Client) FetchSnapshot(ctx context.Context, coin string) (models.FuturesSnapshot, error) {
	sym := symbol(coin)

	var spot spotTicker
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/api/v3/ticker/price",
		QueryParams: map[string][]string{"symbol": {sym}},
	}, &spot); err != nil {
		return models.FuturesSnapshot{}, fmt.Errorf("binance spot ticker %s: %w", coin, err)
	}

	var prem premiumIndex
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.futuresBaseURL + "/fapi/v1/premiumIndex",
		QueryParams: map[string][]string{"symbol": {sym}},
	}, &prem); err != nil {
		return models.FuturesSnapshot{}, fmt.Errorf("binance premium index %s: %w", coin, err)
	}

	var oi openInterest
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.futuresBaseURL + "/fapi/v1/openInterest",
		QueryParams: map[string][]string{"symbol": {sym}},
	}, &oi); err != nil {
		return models.FuturesSnapshot{}, fmt.Errorf("binance open interest %s: %w", coin, err)
	}

	spotPrice, err := strconv.ParseFloat(spot.Price, 64)
	if err != nil {
		return models.FuturesSnapshot{}, fmt.Errorf("binance spot price %s: %w", coin, err)
	}
	markPrice, err := strconv.ParseFloat(prem.MarkPrice, 64)
	if err != nil {
		return models.FuturesSnapshot{}, fmt.Errorf("binance mark price %s: %w", coin, err)
	}
	funding, err := strconv.ParseFloat(prem.LastFundingRate, 64)
	if err != nil {
		return models.FuturesSnapshot{}, fmt.Errorf("binance funding rate %s: %w", coin, err)
	}
	interest, err := strconv.ParseFloat(oi.OpenInterest, 64)
	if err != nil {
		return models.FuturesSnapshot{}, fmt.Errorf("binance open interest %s: %w", coin, err)
	}

	return models.FuturesSnapshot{
		Coin:         util.NormalizeCoin(coin),
		Date:         util.Today(),
		SpotPrice:    spotPrice,
		FuturesPrice: markPrice,
		FundingRate:  funding,
		OpenInterest: interest,
	}, nil
}
