package repository

import (
	"context"
	"database/sql"
	"fmt"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/util"
)

// ClickHouseFuturesStore implements FuturesStore over futures_snapshots.
type ClickHouseFuturesStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseFuturesStore creates the futures store.
func NewClickHouseFuturesStore(db *sql.DB, table string) drepo.FuturesStore {
	return &ClickHouseFuturesStore{db: db, table: table}
}

func (s *ClickHouseFuturesStore) InsertSnapshot(ctx context.Context, snap models.FuturesSnapshot) error {
	day, ok := util.ParseDay(snap.Date)
	if !ok {
		return fmt.Errorf("insert snapshot: bad date %q", snap.Date)
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(coin, date, spot_price, futures_price, premium_pct, funding_rate, funding_rate_annualized, open_interest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		snap.Coin, day, snap.SpotPrice, snap.FuturesPrice, snap.PremiumPct,
		snap.FundingRate, snap.FundingRateAnnualized, snap.OpenInterest,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetLatestN returns the newest n snapshots in ascending date order, the
// shape the persistence checks expect.
func (s *ClickHouseFuturesStore) GetLatestN(ctx context.Context, coin string, n int) ([]models.FuturesSnapshot, error) {
	q := fmt.Sprintf(`SELECT coin, toString(date), spot_price, futures_price, premium_pct,
		funding_rate, funding_rate_annualized, open_interest
		FROM %s FINAL WHERE coin = ?
		ORDER BY date DESC LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, q, coin, n)
	if err != nil {
		return nil, fmt.Errorf("latest snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.FuturesSnapshot
	for rows.Next() {
		var f models.FuturesSnapshot
		if err := rows.Scan(&f.Coin, &f.Date, &f.SpotPrice, &f.FuturesPrice, &f.PremiumPct,
			&f.FundingRate, &f.FundingRateAnnualized, &f.OpenInterest); err != nil {
			return nil, err
		}
		snaps = append(snaps, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}
	return snaps, nil
}
