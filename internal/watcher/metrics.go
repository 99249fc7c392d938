package watcher

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run results reported to Metrics
const (
	resultSuccess = "success"
	resultNoop    = "noop"
	resultSkipped = "skipped"
	resultRetry   = "retry"
	resultSent    = "sent"
	resultFailed  = "failed"
)

// Metrics exposes watcher activity to Prometheus. A nil *Metrics discards everything.
type Metrics struct {
	runs          *prometheus.CounterVec
	notifications *prometheus.CounterVec
	foodsChecked  prometheus.Counter
	batchFetch    *prometheus.HistogramVec
	lastSuccess   prometheus.Gauge
}

// NewMetrics registers the watcher metrics with registerer
func NewMetrics(registerer prometheus.Registerer, environment string) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	environment = strings.TrimSpace(environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": "statuswatch",
		"env":     environment,
	}

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "menza_statuswatch_runs_total",
			Help:        "Favorite status checks by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | noop | skipped | retry
	)

	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "menza_statuswatch_notifications_total",
			Help:        "Status change notifications by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // sent | failed
	)

	foodsChecked := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "menza_statuswatch_foods_checked_total",
			Help:        "Favorite foods compared against their snapshot.",
			ConstLabels: constLabels,
		},
	)

	batchFetch := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "menza_statuswatch_batch_fetch_seconds",
			Help:        "Latency of fetching one batch of favorite foods.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | failed
	)

	lastSuccess := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "menza_statuswatch_last_success_timestamp_seconds",
			Help:        "Unix time of the last successful status check.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(runs, notifications, foodsChecked, batchFetch, lastSuccess)

	return &Metrics{
		runs:          runs,
		notifications: notifications,
		foodsChecked:  foodsChecked,
		batchFetch:    batchFetch,
		lastSuccess:   lastSuccess,
	}
}

func (m *Metrics) IncRun(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	if result == resultSuccess || result == resultNoop {
		m.lastSuccess.SetToCurrentTime()
	}
}

func (m *Metrics) IncNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) AddChecked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.foodsChecked.Add(float64(n))
}

func (m *Metrics) ObserveBatchFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultFailed
	}
	m.batchFetch.WithLabelValues(result).Observe(d.Seconds())
}
