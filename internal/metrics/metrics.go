// Package metrics exposes lifecycle counters to Prometheus. A nil *Recorder
// is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry     *prometheus.Registry
	adoptions    *prometheus.CounterVec
	settlements  *prometheus.CounterVec
	bookings     prometheus.Counter
	checkouts    prometheus.Counter
	gatewayCalls *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		adoptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petverse",
			Name:      "adoption_requests_total",
			Help:      "Adoption request transitions by resulting status.",
		}, []string{"status"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petverse",
			Name:      "payment_settlements_total",
			Help:      "Payment settlements by kind and outcome.",
		}, []string{"kind", "outcome"}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "petverse",
			Name:      "appointments_booked_total",
			Help:      "Service appointments booked.",
		}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "petverse",
			Name:      "shop_checkouts_total",
			Help:      "Shop orders created from carts.",
		}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petverse",
			Name:      "gateway_orders_total",
			Help:      "Remote gateway order creations by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.adoptions, r.settlements, r.bookings, r.checkouts, r.gatewayCalls)
	return r
}

func (r *Recorder) Adoption(status string) {
	if r == nil {
		return
	}
	r.adoptions.WithLabelValues(status).Inc()
}

func (r *Recorder) Settlement(kind, outcome string) {
	if r == nil {
		return
	}
	r.settlements.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) Booking() {
	if r == nil {
		return
	}
	r.bookings.Inc()
}

func (r *Recorder) Checkout() {
	if r == nil {
		return
	}
	r.checkouts.Inc()
}

func (r *Recorder) GatewayOrder(outcome string) {
	if r == nil {
		return
	}
	r.gatewayCalls.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
