// Package api exposes the analytics HTTP surface on Echo. Read endpoints go
// through a byte cache; mutation endpoints (scan, sync) are token-bucket
// rate limited per client.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CacheTTLs sets per-endpoint-family response cache lifetimes.
type CacheTTLs struct {
	Volumes    time.Duration
	Indicators time.Duration
	Alerts     time.Duration
	Futures    time.Duration
}

// DefaultCacheTTLs suits daily-granularity data: minutes, not seconds.
func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		Volumes:    5 * time.Minute,
		Indicators: 5 * time.Minute,
		Alerts:     time.Minute,
		Futures:    time.Minute,
	}
}

// Handler carries the API dependencies.
type Handler struct {
	log     *applogger.Logger
	market  *usecase.MarketService
	alerts  *usecase.AlertService
	scanner *usecase.AlertScanner
	futures *usecase.FuturesService
	syncer  *usecase.Syncer

	cache icache.BytesCache
	rl    *ratelimit.Limiter
	ttl   CacheTTLs
}

// NewHandler wires the API handler.
func NewHandler(
	log *applogger.Logger,
	market *usecase.MarketService,
	alerts *usecase.AlertService,
	scanner *usecase.AlertScanner,
	futuresSvc *usecase.FuturesService,
	syncer *usecase.Syncer,
	cache icache.BytesCache,
	ttl CacheTTLs,
) *Handler {
	return &Handler{
		log:     log,
		market:  market,
		alerts:  alerts,
		scanner: scanner,
		futures: futuresSvc,
		syncer:  syncer,
		cache:   cache,
		rl:      ratelimit.New(),
		ttl:     ttl,
	}
}

// RegisterRoutes attaches all API routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/coins", h.Coins)
	g.GET("/volumes", h.Volumes)
	g.GET("/volumes/summary", h.VolumeSummary)
	g.GET("/volumes/cumulative", h.Cumulative)
	g.GET("/indicators", h.Indicators)
	g.GET("/etf", h.ETFVolumes)
	g.GET("/export", h.Export)

	g.GET("/alerts", h.Alerts)
	g.GET("/alerts/summary", h.AlertSummary)
	g.POST("/alerts/scan", h.Scan)
	g.POST("/alerts/:id/ack", h.Acknowledge)

	g.GET("/futures", h.Futures)
	g.GET("/futures/liquidation", h.Liquidation)

	g.POST("/sync", h.Sync)
	g.GET("/sync/status", h.SyncStatus)
}

// cached serves the wrapped response from the byte cache when fresh,
// otherwise computes it, stores it, and serves it. Cache failures degrade
// to a plain compute, never an error.
func (h *Handler) cached(c echo.Context, key string, ttl time.Duration, compute func() (interface{}, error)) error {
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(key); err != nil {
			h.log.Warn("cache get failed", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	data, err := compute()
	if err != nil {
		h.log.Error("request failed", applogger.String("key", key), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	body := xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(key, b, ttl); err != nil {
			h.log.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

// limited rejects the request when the client exhausted its bucket.
func (h *Handler) limited(c echo.Context, op string, capacity, refillPerSec float64) bool {
	key := c.RealIP() + ":" + op
	if h.rl.Allow(key, capacity, refillPerSec) {
		return false
	}
	h.log.Warn("rate limited", applogger.String("op", op), applogger.String("remote", c.RealIP()))
	return true
}
