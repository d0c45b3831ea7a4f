// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PurchasesTotal counts successfully recorded purchases.
	PurchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinmarket_purchases_total",
		Help: "Number of completed purchase transactions.",
	})

	// RefundsTotal counts refund credits applied during item resolution.
	RefundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinmarket_refunds_total",
		Help: "Number of refund credits applied.",
	})

	// RefundFailuresTotal counts refund records that failed and were left
	// unrefunded for a later retry.
	RefundFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinmarket_refund_failures_total",
		Help: "Number of refund credits that failed.",
	})

	// TopUpsTotal counts confirmed provider top-ups credited to accounts.
	TopUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinmarket_topups_total",
		Help: "Number of confirmed top-up credits.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
