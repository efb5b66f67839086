package di

import (
	"context"
	"fmt"
	"time"

	drepo "CoinPulse/internal/domain/repository"
	internalrepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/binance"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/etf"
	"CoinPulse/internal/service/metrics"
	"CoinPulse/internal/usecase"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and applies the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close() // cannot log here (DI layer has no logger yet); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideBarStore creates the ClickHouse daily bar repository.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config) drepo.BarStore {
	return internalrepo.NewClickHouseBarStore(chClient.DB(), cfg.ClickHouse.Database+".daily_bars")
}

// ProvideAlertStore creates the ClickHouse alert repository.
func ProvideAlertStore(chClient *pkgch.Client, cfg *config.Config) drepo.AlertStore {
	return internalrepo.NewClickHouseAlertStore(chClient.DB(), cfg.ClickHouse.Database+".alerts")
}

// ProvideFuturesStore creates the ClickHouse futures snapshot repository.
func ProvideFuturesStore(chClient *pkgch.Client, cfg *config.Config) drepo.FuturesStore {
	return internalrepo.NewClickHouseFuturesStore(chClient.DB(), cfg.ClickHouse.Database+".futures_snapshots")
}

// ProvideAlertPublisher creates the Kafka alert publisher, or a no-op one
// when Kafka is disabled.
func ProvideAlertPublisher(cfg *config.Config) (drepo.AlertPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopAlertPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.NewService()
}

// ProvideBinanceClient creates the spot and futures market data client.
func ProvideBinanceClient(cfg *config.Config) *binance.Client {
	return binance.New(binance.Config{
		BaseURL:        cfg.Binance.BaseURL,
		FuturesBaseURL: cfg.Binance.FuturesBaseURL,
		Timeout:        cfg.Binance.Timeout,
		HistoryDays:    cfg.Binance.HistoryDays,
	})
}

// ProvideETFFetcher creates the ETF proxy bar fetcher.
func ProvideETFFetcher(cfg *config.Config) *etf.Fetcher {
	return etf.New(etf.Config{
		BaseURL: cfg.ETF.BaseURL,
		Timeout: cfg.ETF.Timeout,
		Tickers: cfg.ETF.Tickers,
	})
}

// ProvideCache creates the response cache: Redis when configured, otherwise
// an in-process TTL map.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideMarketService creates the market read-model use case.
func ProvideMarketService(bars drepo.BarStore, cfg *config.Config, log *applogger.Logger) *usecase.MarketService {
	return usecase.NewMarketService(bars, cfg.Analytics, log)
}

// ProvideAlertService creates the alert listing use case.
func ProvideAlertService(alerts drepo.AlertStore) *usecase.AlertService {
	return usecase.NewAlertService(alerts)
}

// ProvideAlertScanner creates the detection pipeline.
func ProvideAlertScanner(
	bars drepo.BarStore,
	alerts drepo.AlertStore,
	futures drepo.FuturesStore,
	publisher drepo.AlertPublisher,
	m drepo.Metrics,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.AlertScanner {
	return usecase.NewAlertScanner(bars, alerts, futures, publisher, m, cfg.Analytics, log)
}

// ProvideFuturesService creates the futures read-model use case.
func ProvideFuturesService(futures drepo.FuturesStore, bars drepo.BarStore, cfg *config.Config) *usecase.FuturesService {
	return usecase.NewFuturesService(futures, bars, cfg.Analytics)
}

// ProvideSyncer creates the daily sync pipeline. The ETF source is only
// wired when proxy tickers are configured.
func ProvideSyncer(
	bn *binance.Client,
	etfFetcher *etf.Fetcher,
	bars drepo.BarStore,
	futures drepo.FuturesStore,
	scanner *usecase.AlertScanner,
	m drepo.Metrics,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.Syncer {
	var etfSource drepo.BarSource
	if len(cfg.ETF.Tickers) > 0 {
		etfSource = etfFetcher
	}
	return usecase.NewSyncer(bn, etfSource, bn, bars, futures, scanner, m, cfg.Analytics, log, usecase.SyncerConfig{
		Coins:      cfg.Binance.Coins,
		HourUTC:    cfg.Sync.HourUTC,
		Interval:   cfg.Sync.CheckInterval,
		ScanOnSync: cfg.Sync.ScanOnSync,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	market *usecase.MarketService,
	alerts *usecase.AlertService,
	scanner *usecase.AlertScanner,
	futures *usecase.FuturesService,
	syncer *usecase.Syncer,
	cache icache.BytesCache,
	publisher drepo.AlertPublisher,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, market, alerts, scanner, futures, syncer, cache, publisher, chClient)
}
