package usecase

import (
	"context"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
)

// AlertService serves persisted alerts. Identity and the acknowledged flag
// live in the store; this layer only translates request filters.
type AlertService struct {
	store drepo.AlertStore
}

// NewAlertService creates the query service.
func NewAlertService(store drepo.AlertStore) *AlertService {
	return &AlertService{store: store}
}

// List returns stored alerts matching the filter, unacknowledged only by
// default.
func (s *AlertService) List(ctx context.Context, req models.AlertsRequest) ([]models.StoredAlert, error) {
	return s.store.ListAlerts(ctx, drepo.AlertFilter{
		Coin:         req.Coin,
		Severity:     models.Severity(req.Severity),
		From:         req.From,
		To:           req.To,
		Limit:        req.Limit,
		IncludeAcked: req.Acked,
	})
}

// Summary counts alerts by severity and kind over the trailing days.
func (s *AlertService) Summary(ctx context.Context, req models.AlertSummaryRequest) (models.AlertSummary, error) {
	return s.store.Summary(ctx, req.Coin, req.Days)
}

// Acknowledge marks one alert as handled.
func (s *AlertService) Acknowledge(ctx context.Context, id int64) error {
	return s.store.Acknowledge(ctx, id)
}
