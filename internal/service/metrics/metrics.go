// Package metrics exposes Prometheus instrumentation for scans, syncs and
// alert production.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinpulse",
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Alert scan duration per coin",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"coin"},
	)

	alertsProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinpulse",
			Subsystem: "scan",
			Name:      "alerts_total",
			Help:      "Alerts produced by kind and severity",
		},
		[]string{"kind", "severity"},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinpulse",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Market data sync runs by result",
		},
		[]string{"result"},
	)

	syncBars = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinpulse",
			Subsystem: "sync",
			Name:      "bars_total",
			Help:      "Daily bars written per coin",
		},
		[]string{"coin"},
	)

	componentErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinpulse",
			Name:      "errors_total",
			Help:      "Errors by component",
		},
		[]string{"component"},
	)
)

// Service implements the domain metrics sink.
type Service struct{}

func NewService() *Service {
	once.Do(func() {
		prometheus.MustRegister(scanDuration, alertsProduced, syncRuns, syncBars, componentErrors)
	})
	return &Service{}
}

func (s *Service) ObserveScan(coin string, d time.Duration) {
	scanDuration.WithLabelValues(coin).Observe(d.Seconds())
}

func (s *Service) RecordAlert(kind, severity string) {
	alertsProduced.WithLabelValues(kind, severity).Inc()
}

func (s *Service) RecordSync(coin string, bars int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	syncRuns.WithLabelValues(result).Inc()
	if bars > 0 {
		syncBars.WithLabelValues(coin).Add(float64(bars))
	}
}

func (s *Service) RecordError(component string) {
	componentErrors.WithLabelValues(component).Inc()
}
