package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Coins lists every coin with stored spot bars.
func (h *Handler) Coins(c echo.Context) error {
	return h.cached(c, "coins", h.ttl.Volumes, func() (interface{}, error) {
		return h.market.Coins(c.Request().Context())
	})
}

// Volumes serves spot daily bars with taker-flow splits.
func (h *Handler) Volumes(c echo.Context) error {
	req := &models.VolumesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("volumes:%s:%s:%s:%d", req.Coin, req.From, req.To, req.Limit)
	return h.cached(c, key, h.ttl.Volumes, func() (interface{}, error) {
		return h.market.Volumes(c.Request().Context(), *req)
	})
}

// VolumeSummary aggregates flow over the trailing period.
func (h *Handler) VolumeSummary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("summary:%s:%d", req.Coin, req.Days)
	return h.cached(c, key, h.ttl.Volumes, func() (interface{}, error) {
		return h.market.Summary(c.Request().Context(), *req)
	})
}

// Cumulative serves running buy/sell/net USD totals for charting flow drift.
func (h *Handler) Cumulative(c echo.Context) error {
	req := &models.CumulativeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("cumulative:%s:%d", req.Coin, req.Days)
	return h.cached(c, key, h.ttl.Volumes, func() (interface{}, error) {
		return h.market.Cumulative(c.Request().Context(), *req)
	})
}

// Export streams a coin's spot bar history as a CSV attachment. Not cached:
// exports are rare and the encoding is the cheap part.
func (h *Handler) Export(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bars, err := h.market.Volumes(c.Request().Context(), models.VolumesRequest{
		Coin: req.Coin, From: req.From, To: req.To,
	})
	if err != nil {
		h.log.Error("export failed", applogger.String("coin", req.Coin), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s_daily_bars.csv"`, strings.ToLower(req.Coin)))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	header := []string{
		"coin", "date", "open", "high", "low", "close",
		"total_volume", "buy_volume", "sell_volume", "net_volume",
		"buy_volume_usd", "sell_volume_usd", "net_volume_usd",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, b := range bars {
		row := []string{
			b.Coin, b.Date, f(b.Open), f(b.High), f(b.Low), f(b.Close),
			f(b.TotalVolume), f(b.BuyVolume), f(b.SellVolume), f(b.NetVolume),
			f(b.BuyVolumeUSD), f(b.SellVolumeUSD), f(b.NetVolumeUSD),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Indicators serves the derived indicator bundle.
func (h *Handler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("indicators:%s:%d", req.Coin, req.Days)
	return h.cached(c, key, h.ttl.Indicators, func() (interface{}, error) {
		return h.market.Indicators(c.Request().Context(), *req)
	})
}

// ETFVolumes serves ETF daily bars with estimated flow splits.
func (h *Handler) ETFVolumes(c echo.Context) error {
	req := &models.ETFRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("etf:%s:%d", req.Coin, req.Days)
	return h.cached(c, key, h.ttl.Volumes, func() (interface{}, error) {
		return h.market.ETFVolumes(c.Request().Context(), *req)
	})
}

// Sync triggers a manual data sync, optionally for one coin.
func (h *Handler) Sync(c echo.Context) error {
	if h.limited(c, "sync", 2, 0.05) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "sync rate limited")
	}
	req := &models.SyncRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	if req.Coin != "" {
		return xhttp.SuccessResponse(c, []interface{}{h.syncer.SyncCoin(ctx, req.Coin)})
	}
	return xhttp.SuccessResponse(c, h.syncer.SyncAll(ctx))
}

// SyncStatus reports the sync schedule and each coin's last outcome.
func (h *Handler) SyncStatus(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.syncer.Status())
}
