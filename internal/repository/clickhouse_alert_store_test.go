package repository

import (
	"strings"
	"testing"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
)

func TestListAlertsQueryOrdersBySeverityRank(t *testing.T) {
	q, _ := listAlertsQuery("db.alerts", drepo.AlertFilter{})
	// the severity column is a string; a raw sort is alphabetical
	if !strings.Contains(q, severityRank+" DESC") {
		t.Fatalf("query must order by severity rank, got: %s", q)
	}
	if strings.Contains(q, "severity ASC") || strings.Contains(q, "severity DESC") {
		t.Fatalf("query must not sort the raw severity string, got: %s", q)
	}
	if !strings.Contains(q, "ORDER BY date DESC") {
		t.Fatalf("newest day first, got: %s", q)
	}
}

func TestListAlertsQueryFilters(t *testing.T) {
	f := drepo.AlertFilter{
		Coin:     "BTC",
		Severity: models.SeverityHigh,
		From:     "2024-01-01",
		To:       "2024-02-01",
		Limit:    50,
	}
	q, args := listAlertsQuery("db.alerts", f)

	for _, clause := range []string{
		"coin = ?", "severity = ?", "date >= ?", "date <= ?", "acknowledged = 0", "LIMIT ?",
	} {
		if !strings.Contains(q, clause) {
			t.Fatalf("missing clause %q in: %s", clause, q)
		}
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}
	if args[0] != "BTC" || args[1] != "high" || args[4] != 50 {
		t.Fatalf("args bound out of order: %v", args)
	}

	q, args = listAlertsQuery("db.alerts", drepo.AlertFilter{IncludeAcked: true})
	if strings.Contains(q, "acknowledged = 0") {
		t.Fatalf("acked filter should be dropped when included, got: %s", q)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}
