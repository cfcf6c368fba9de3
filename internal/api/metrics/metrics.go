// Package metrics defines all custom Prometheus metrics for the contracts
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry at package init and are
// incremented from the HTTP layer only; the core services stay metric-free.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "contracts"

// PaymentsTotal counts job payment attempts.
// Label:
//   - result: "success", "rejected" (domain refusal), or "busy" (contention)
var PaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Total number of job payment attempts, by result.",
	},
	[]string{"result"},
)

// PaymentVolume sums the money moved by successful job payments.
var PaymentVolume = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_volume_total",
		Help:      "Total monetary volume of successful job payments.",
	},
)

// DepositsTotal counts deposit attempts.
// Label:
//   - result: "success", "limit_exceeded", "rejected", or "busy"
var DepositsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deposits_total",
		Help:      "Total number of balance deposit attempts, by result.",
	},
	[]string{"result"},
)

// ReportsServedTotal counts earnings report responses.
// Label:
//   - report: "best_profession" or "best_clients"
var ReportsServedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_served_total",
		Help:      "Total number of earnings reports served, by report kind.",
	},
	[]string{"report"},
)
