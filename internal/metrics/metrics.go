// Package metrics holds the Prometheus collectors for the payment bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "khqr_bot",
			Name:      "payments_created_total",
			Help:      "Total number of payment requests issued.",
		},
	)

	ReconcileOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "khqr_bot",
			Name:      "reconcile_outcomes_total",
			Help:      "Terminal reconciliation outcomes by kind.",
		},
		[]string{"outcome"},
	)

	StatusCheckErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "khqr_bot",
			Name:      "status_check_errors_total",
			Help:      "Failed Bakong transaction status checks.",
		},
	)

	NotifyErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "khqr_bot",
			Name:      "notify_errors_total",
			Help:      "Failed Telegram notification calls.",
		},
	)
)

// TrackPending registers a gauge that reports the number of payment requests
// currently awaiting an outcome.
func TrackPending(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "khqr_bot",
			Name:      "pending_transactions",
			Help:      "Payment requests currently awaiting an outcome.",
		},
		func() float64 { return float64(count()) },
	)
}
