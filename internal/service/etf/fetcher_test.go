package etf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chartServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher(srv *httptest.Server) *Fetcher {
	return New(Config{BaseURL: srv.URL, Tickers: map[string]string{"BTC": "IBIT"}})
}

func TestFetchDailyBarsRaggedQuoteArrays(t *testing.T) {
	// close carries one entry fewer than the other series; the shortest
	// array bounds the scan
	srv := chartServer(t, `{"chart":{"result":[{
		"timestamp":[1700000000,1700086400,1700172800],
		"indicators":{"quote":[{
			"open":[40.0,41.0,42.0],
			"high":[41.0,42.0,43.0],
			"low":[39.0,40.0,41.0],
			"close":[40.5,41.5],
			"volume":[1000.0,2000.0,3000.0]
		}]}
	}]}}`)

	bars, err := newTestFetcher(srv).FetchDailyBars(context.Background(), "BTC", "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars from the ragged payload, got %d", len(bars))
	}
	if bars[1].Close != 41.5 || bars[1].TotalVolume != 2000 {
		t.Fatalf("unexpected second bar %+v", bars[1])
	}
}

func TestFetchDailyBarsSkipsHaltedDays(t *testing.T) {
	srv := chartServer(t, `{"chart":{"result":[{
		"timestamp":[1700000000,1700086400,1700172800],
		"indicators":{"quote":[{
			"open":[40.0,null,42.0],
			"high":[41.0,null,43.0],
			"low":[39.0,null,41.0],
			"close":[40.5,null,42.5],
			"volume":[1000.0,null,3000.0]
		}]}
	}]}}`)

	bars, err := newTestFetcher(srv).FetchDailyBars(context.Background(), "BTC", "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("null-quote day should be skipped, got %d bars", len(bars))
	}
	if bars[0].Close != 40.5 || bars[1].Close != 42.5 {
		t.Fatalf("unexpected bars %+v", bars)
	}
}

func TestFetchDailyBarsUnknownCoin(t *testing.T) {
	srv := chartServer(t, `{}`)
	if _, err := newTestFetcher(srv).FetchDailyBars(context.Background(), "DOGE", ""); err == nil {
		t.Fatalf("expected an error for a coin without a ticker")
	}
}
