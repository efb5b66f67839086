package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/handler/api"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/usecase"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/http/middleware"
	applogger "CoinPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	market    *usecase.MarketService
	alerts    *usecase.AlertService
	scanner   *usecase.AlertScanner
	futures   *usecase.FuturesService
	syncer    *usecase.Syncer
	cache     icache.BytesCache
	publisher repository.AlertPublisher
	chClient  *pkgch.Client

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	market *usecase.MarketService,
	alerts *usecase.AlertService,
	scanner *usecase.AlertScanner,
	futures *usecase.FuturesService,
	syncer *usecase.Syncer,
	cache icache.BytesCache,
	publisher repository.AlertPublisher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		market:    market,
		alerts:    alerts,
		scanner:   scanner,
		futures:   futures,
		syncer:    syncer,
		cache:     cache,
		publisher: publisher,
		chClient:  chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := api.NewHandler(
		a.log,
		a.market,
		a.alerts,
		a.scanner,
		a.futures,
		a.syncer,
		a.cache,
		a.cacheTTLs(),
	)

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(middleware.Metrics(a.log, time.Second)))
	}
	a.httpServer = xhttp.NewServer(handler, opts...)

	// Scheduled daily sync
	if a.cfg.Sync.Enabled {
		go a.syncer.Run(ctx)
		a.log.Info("sync scheduler started",
			applogger.Int("hour_utc", a.cfg.Sync.HourUTC),
			applogger.Strings("coins", a.cfg.Binance.Coins),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

// cacheTTLs maps configured cache lifetimes over the defaults.
func (a *App) cacheTTLs() api.CacheTTLs {
	ttl := api.DefaultCacheTTLs()
	if v := a.cfg.Cache.TTL.Volumes; v > 0 {
		ttl.Volumes = v
	}
	if v := a.cfg.Cache.TTL.Indicators; v > 0 {
		ttl.Indicators = v
	}
	if v := a.cfg.Cache.TTL.Alerts; v > 0 {
		ttl.Alerts = v
	}
	if v := a.cfg.Cache.TTL.Futures; v > 0 {
		ttl.Futures = v
	}
	return ttl
}
