package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts checkout pipeline outcomes. A nil *Metrics is valid and
// records nothing, so tests and tools can skip registration.
type Metrics struct {
	checkouts        *prometheus.CounterVec
	reservations     *prometheus.CounterVec
	reconciliations  *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
}

func New() *Metrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "stock_reservations_total",
		Help:      "Stock reservation attempts by outcome.",
	}, []string{"outcome"})
	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "reconciliations_total",
		Help:      "Payment/delivery reconciliations by operation and outcome.",
	}, []string{"op", "outcome"})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "checkout_duration_ms",
		Help:      "Checkout latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	prometheus.MustRegister(checkouts, reservations, reconciliations, checkoutDuration)
	return &Metrics{
		checkouts:        checkouts,
		reservations:     reservations,
		reconciliations:  reconciliations,
		checkoutDuration: checkoutDuration,
	}
}

func (m *Metrics) ObserveCheckout(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
	m.checkoutDuration.Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) CountReservation(outcome string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CountReconciliation(op, outcome string) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(op, outcome).Inc()
}

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
