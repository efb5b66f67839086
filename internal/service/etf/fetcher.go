// Package etf pulls daily ETF bars from the Yahoo Finance chart API. Each
// coin maps to a proxy ETF ticker (BTC -> IBIT, ETH -> ETHA, ...). ETF feeds
// expose no taker-side split, so the flow estimator fills it downstream.
package etf

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/util"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Fetcher downloads ETF daily bars for the configured coin->ticker map.
type Fetcher struct {
	baseURL string
	tickers map[string]string
	http    *xhttp.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Tickers map[string]string
}

func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Fetcher{
		baseURL: cfg.BaseURL,
		tickers: cfg.Tickers,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

// Ticker returns the proxy ETF ticker for a coin, if one is configured.
func (f *Fetcher) Ticker(coin string) (string, bool) {
	t, ok := f.tickers[util.NormalizeCoin(coin)]
	return t, ok
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars pulls up to a year of daily ETF bars. Bars before `since`
// (exclusive) are dropped; halted days (null quotes) are skipped. Side
// volumes are zero here, the caller runs the flow estimator over the result.
func (f *Fetcher) FetchDailyBars(ctx context.Context, coin, since string) ([]models.DailyBar, error) {
	ticker, ok := f.Ticker(coin)
	if !ok {
		return nil, fmt.Errorf("etf: no ticker configured for %s", coin)
	}

	var resp chartResponse
	err := f.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", f.baseURL, ticker),
		QueryParams: map[string][]string{
			"range":    {"1y"},
			"interval": {"1d"},
		},
		Headers: map[string]string{
			// Yahoo rejects requests without a browser-ish UA
			"User-Agent": "Mozilla/5.0 (compatible; coinpulse/1.0)",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("etf chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("etf chart %s: %s: %s", ticker, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("etf chart %s: empty result", ticker)
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	normalized := util.NormalizeCoin(coin)

	// Yahoo occasionally ships ragged arrays; index only where every series
	// has a value
	n := len(result.Timestamp)
	for _, series := range [][]*float64{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume} {
		if len(series) < n {
			n = len(series)
		}
	}

	bars := make([]models.DailyBar, 0, n)
	for i := 0; i < n; i++ {
		ts := result.Timestamp[i]
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		date := util.FormatDay(time.Unix(ts, 0))
		if since != "" && date <= since {
			continue
		}
		bars = append(bars, models.DailyBar{
			Coin:        normalized,
			Date:        date,
			Open:        *quote.Open[i],
			High:        *quote.High[i],
			Low:         *quote.Low[i],
			Close:       *quote.Close[i],
			TotalVolume: *quote.Volume[i],
		})
	}
	return bars, nil
}
