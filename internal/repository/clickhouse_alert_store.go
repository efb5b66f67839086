package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/util"
)

// ClickHouseAlertStore implements AlertStore over the alerts table. It owns
// alert identity: IDs are assigned at insert time.
type ClickHouseAlertStore struct {
	db    *sql.DB
	table string
	seq   atomic.Uint64
}

// NewClickHouseAlertStore creates the alert store.
func NewClickHouseAlertStore(db *sql.DB, table string) drepo.AlertStore {
	return &ClickHouseAlertStore{db: db, table: table}
}

// nextID produces a process-unique, time-ordered ID: millisecond timestamp
// shifted left with a wrapping sequence in the low bits.
func (s *ClickHouseAlertStore) nextID() uint64 {
	return uint64(time.Now().UnixMilli())<<20 | (s.seq.Add(1) & 0xFFFFF)
}

func (s *ClickHouseAlertStore) ExistingKeys(ctx context.Context, coin, from, to string) (map[models.AlertKey]struct{}, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT coin, toString(date), kind FROM %s FINAL WHERE coin = ?", s.table)
	args := []interface{}{coin}
	if from != "" {
		sb.WriteString(" AND date >= ?")
		args = append(args, from)
	}
	if to != "" {
		sb.WriteString(" AND date <= ?")
		args = append(args, to)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("existing keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[models.AlertKey]struct{})
	for rows.Next() {
		var k models.AlertKey
		var kind string
		if err := rows.Scan(&k.Coin, &k.Date, &kind); err != nil {
			return nil, err
		}
		k.Kind = models.AlertKind(kind)
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (s *ClickHouseAlertStore) InsertAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	values := make([]string, 0, len(alerts))
	args := make([]interface{}, 0, len(alerts)*12)
	for _, a := range alerts {
		day, ok := util.ParseDay(a.Date)
		if !ok {
			continue
		}
		row := a.Flatten()
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			s.nextID(), row.Coin, day, string(row.Kind), string(row.Severity),
			row.Description, row.ValueUSD, row.Volume, row.ZScore, row.RSI,
			row.Price, row.Metadata,
		)
	}
	if len(values) == 0 {
		return nil
	}

	q := fmt.Sprintf(`INSERT INTO %s
		(id, coin, date, kind, severity, description, value_usd, volume, zscore, rsi, price, metadata)
		VALUES %s`, s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert alerts: %w", err)
	}
	return nil
}

// severityRank orders severities by urgency inside SQL. The column is a
// plain string; a bare ORDER BY would sort it alphabetically
// (critical < high < low < medium).
const severityRank = "multiIf(severity = 'critical', 4, severity = 'high', 3, severity = 'medium', 2, 1)"

// listAlertsQuery renders the filtered listing: newest first, most urgent
// first within a day.
func listAlertsQuery(table string, f drepo.AlertFilter) (string, []interface{}) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT id, coin, toString(date), kind, severity, description,
		value_usd, volume, zscore, rsi, price, metadata, acknowledged
		FROM %s FINAL WHERE 1 = 1`, table)
	var args []interface{}

	if f.Coin != "" {
		sb.WriteString(" AND coin = ?")
		args = append(args, f.Coin)
	}
	if f.Severity != "" {
		sb.WriteString(" AND severity = ?")
		args = append(args, string(f.Severity))
	}
	if f.From != "" {
		sb.WriteString(" AND date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		sb.WriteString(" AND date <= ?")
		args = append(args, f.To)
	}
	if !f.IncludeAcked {
		sb.WriteString(" AND acknowledged = 0")
	}
	sb.WriteString(" ORDER BY date DESC, " + severityRank + " DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return sb.String(), args
}

func (s *ClickHouseAlertStore) ListAlerts(ctx context.Context, f drepo.AlertFilter) ([]models.StoredAlert, error) {
	q, args := listAlertsQuery(s.table, f)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []models.StoredAlert
	for rows.Next() {
		var a models.StoredAlert
		var kind, severity string
		var acked uint8
		if err := rows.Scan(&a.ID, &a.Coin, &a.Date, &kind, &severity, &a.Description,
			&a.ValueUSD, &a.Volume, &a.ZScore, &a.RSI, &a.Price, &a.Metadata, &acked); err != nil {
			return nil, err
		}
		a.Kind = models.AlertKind(kind)
		a.Severity = models.Severity(severity)
		a.Acknowledged = acked != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *ClickHouseAlertStore) Acknowledge(ctx context.Context, id int64) error {
	q := fmt.Sprintf("ALTER TABLE %s UPDATE acknowledged = 1 WHERE id = ?", s.table)
	if _, err := s.db.ExecContext(ctx, q, uint64(id)); err != nil {
		return fmt.Errorf("acknowledge alert %d: %w", id, err)
	}
	return nil
}

func (s *ClickHouseAlertStore) Summary(ctx context.Context, coin string, days int) (models.AlertSummary, error) {
	since := util.DaysAgo(days)
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT kind, severity, count() FROM %s FINAL WHERE date >= ?", s.table)
	args := []interface{}{since}
	if coin != "" {
		sb.WriteString(" AND coin = ?")
		args = append(args, coin)
	}
	sb.WriteString(" GROUP BY kind, severity")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return models.AlertSummary{}, fmt.Errorf("alert summary: %w", err)
	}
	defer rows.Close()

	summary := models.AlertSummary{
		Coin:       coin,
		Days:       days,
		BySeverity: make(map[models.Severity]int),
		ByKind:     make(map[models.AlertKind]int),
	}
	for rows.Next() {
		var kind, severity string
		var n uint64
		if err := rows.Scan(&kind, &severity, &n); err != nil {
			return models.AlertSummary{}, err
		}
		summary.Total += int(n)
		summary.BySeverity[models.Severity(severity)] += int(n)
		summary.ByKind[models.AlertKind(kind)] += int(n)
	}
	return summary, rows.Err()
}

func (s *ClickHouseAlertStore) PurgeOlderThan(ctx context.Context, date string) error {
	q := fmt.Sprintf("ALTER TABLE %s DELETE WHERE date < ?", s.table)
	if _, err := s.db.ExecContext(ctx, q, date); err != nil {
		return fmt.Errorf("purge alerts: %w", err)
	}
	return nil
}
