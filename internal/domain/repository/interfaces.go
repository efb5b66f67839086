package repository

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
)

// BarStore persists and serves daily bars for spot and ETF markets.
// Dates are YYYY-MM-DD strings; empty from/to means unbounded.
type BarStore interface {
	UpsertBars(ctx context.Context, market Market, bars []models.DailyBar) error
	GetBars(ctx context.Context, market Market, coin, from, to string, limit int) ([]models.DailyBar, error)
	GetLatestNBars(ctx context.Context, market Market, coin string, n int) ([]models.DailyBar, error)
	LatestDate(ctx context.Context, market Market, coin string) (string, error)
	Coins(ctx context.Context, market Market) ([]string, error)
}

// AlertFilter narrows an alert listing.
type AlertFilter struct {
	Coin         string
	Severity     models.Severity
	From, To     string
	Limit        int
	IncludeAcked bool
}

// AlertStore owns alert identity and the acknowledged flag. The engine
// hands over alerts without IDs; the store assigns them.
type AlertStore interface {
	// ExistingKeys returns dedup keys already persisted for the coin in
	// [from, to]. Scans consult this set so re-running over unchanged data
	// inserts nothing.
	ExistingKeys(ctx context.Context, coin, from, to string) (map[models.AlertKey]struct{}, error)
	InsertAlerts(ctx context.Context, alerts []models.Alert) error
	ListAlerts(ctx context.Context, f AlertFilter) ([]models.StoredAlert, error)
	Acknowledge(ctx context.Context, id int64) error
	Summary(ctx context.Context, coin string, days int) (models.AlertSummary, error)
	PurgeOlderThan(ctx context.Context, date string) error
}

// FuturesStore persists daily futures market snapshots.
type FuturesStore interface {
	InsertSnapshot(ctx context.Context, snap models.FuturesSnapshot) error
	GetLatestN(ctx context.Context, coin string, n int) ([]models.FuturesSnapshot, error)
}

// AlertPublisher fans newly persisted alerts out to downstream consumers.
// Publishing is best-effort; scan results never depend on it.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []models.Alert) error
	Close() error
}

// BarSource fetches daily bars from an external venue, starting at the day
// after `since` (empty means full history up to the configured depth).
type BarSource interface {
	FetchDailyBars(ctx context.Context, coin, since string) ([]models.DailyBar, error)
}

// FuturesSource fetches the current futures market observation for a coin.
type FuturesSource interface {
	FetchSnapshot(ctx context.Context, coin string) (models.FuturesSnapshot, error)
}

// Metrics abstracts operational counters so use cases stay free of the
// concrete metrics backend.
type Metrics interface {
	ObserveScan(coin string, d time.Duration)
	RecordAlert(kind, severity string)
	RecordSync(coin string, bars int, err error)
	RecordError(component string)
}
