package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/util"
)

// ClickHouseBarStore implements BarStore over the daily_bars table.
type ClickHouseBarStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseBarStore creates the bar store.
func NewClickHouseBarStore(db *sql.DB, table string) drepo.BarStore {
	return &ClickHouseBarStore{db: db, table: table}
}

const barColumns = `market, coin, date, open, high, low, close,
	total_volume, buy_volume, sell_volume, net_volume,
	buy_volume_usd, sell_volume_usd, net_volume_usd`

func (s *ClickHouseBarStore) UpsertBars(ctx context.Context, market drepo.Market, bars []models.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}
	// Chunked multi-row VALUES to keep round-trips low on backfills.
	const chunkSize = 1000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*14)
		for _, b := range bars[start:end] {
			day, ok := util.ParseDay(b.Date)
			if !ok || b.Coin == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				string(market), b.Coin, day,
				b.Open, b.High, b.Low, b.Close,
				b.TotalVolume, b.BuyVolume, b.SellVolume, b.NetVolume,
				b.BuyVolumeUSD, b.SellVolumeUSD, b.NetVolumeUSD,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, barColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("upsert bars: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseBarStore) GetBars(ctx context.Context, market drepo.Market, coin, from, to string, limit int) ([]models.DailyBar, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT coin, toString(date), open, high, low, close,
		total_volume, buy_volume, sell_volume, net_volume,
		buy_volume_usd, sell_volume_usd, net_volume_usd
		FROM %s FINAL WHERE market = ? AND coin = ?`, s.table)
	args := []interface{}{string(market), coin}

	if from != "" {
		sb.WriteString(" AND date >= ?")
		args = append(args, from)
	}
	if to != "" {
		sb.WriteString(" AND date <= ?")
		args = append(args, to)
	}
	sb.WriteString(" ORDER BY date ASC")
	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetLatestNBars returns the newest n bars in ascending date order, ready
// for the indicator pipeline.
func (s *ClickHouseBarStore) GetLatestNBars(ctx context.Context, market drepo.Market, coin string, n int) ([]models.DailyBar, error) {
	q := fmt.Sprintf(`SELECT coin, toString(date), open, high, low, close,
		total_volume, buy_volume, sell_volume, net_volume,
		buy_volume_usd, sell_volume_usd, net_volume_usd
		FROM %s FINAL WHERE market = ? AND coin = ?
		ORDER BY date DESC LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, q, string(market), coin, n)
	if err != nil {
		return nil, fmt.Errorf("latest bars: %w", err)
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}
	// reverse to ascending
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func (s *ClickHouseBarStore) LatestDate(ctx context.Context, market drepo.Market, coin string) (string, error) {
	q := fmt.Sprintf("SELECT max(date) FROM %s WHERE market = ? AND coin = ?", s.table)
	var day time.Time
	err := s.db.QueryRowContext(ctx, q, string(market), coin).Scan(&day)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("latest date: %w", err)
	}
	// max() over no rows yields the epoch zero Date
	if day.Year() <= 1970 {
		return "", nil
	}
	return util.FormatDay(day), nil
}

func (s *ClickHouseBarStore) Coins(ctx context.Context, market drepo.Market) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT coin FROM %s WHERE market = ? ORDER BY coin", s.table)
	rows, err := s.db.QueryContext(ctx, q, string(market))
	if err != nil {
		return nil, fmt.Errorf("coins: %w", err)
	}
	defer rows.Close()

	var coins []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		coins = append(coins, c)
	}
	return coins, rows.Err()
}

func scanBars(rows *sql.Rows) ([]models.DailyBar, error) {
	var bars []models.DailyBar
	for rows.Next() {
		var b models.DailyBar
		if err := rows.Scan(&b.Coin, &b.Date,
			&b.Open, &b.High, &b.Low, &b.Close,
			&b.TotalVolume, &b.BuyVolume, &b.SellVolume, &b.NetVolume,
			&b.BuyVolumeUSD, &b.SellVolumeUSD, &b.NetVolumeUSD); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
