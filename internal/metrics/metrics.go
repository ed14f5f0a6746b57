package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "epdq"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	redirectsBuilt    *prometheus.CounterVec
	checkoutsRejected *prometheus.CounterVec
	callbacksTotal    *prometheus.CounterVec
	signatureFailures *prometheus.CounterVec
	paymentsRecorded  *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg. Use prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		redirectsBuilt: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redirects_built_total",
				Help:      "Signed redirect requests built, by gateway and mode",
			},
			[]string{"gateway_id", "mode"},
		),
		checkoutsRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkouts_rejected_total",
				Help:      "Checkout attempts refused before a redirect was built",
			},
			[]string{"gateway_id", "reason"},
		),
		callbacksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "callbacks_total",
				Help:      "Gateway return callbacks, by kind and result",
			},
			[]string{"gateway_id", "kind", "result"},
		),
		signatureFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signature_failures_total",
				Help:      "Inbound callbacks whose SHA-OUT signature did not verify",
			},
			[]string{"gateway_id"},
		),
		paymentsRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_recorded_total",
				Help:      "Completed payments written to the ledger",
			},
			[]string{"gateway_id", "currency", "mode"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) RedirectBuilt(gatewayID, mode string) {
	if m == nil {
		return
	}
	m.redirectsBuilt.WithLabelValues(gatewayID, mode).Inc()
}

func (m *Metrics) CheckoutRejected(gatewayID, reason string) {
	if m == nil {
		return
	}
	m.checkoutsRejected.WithLabelValues(gatewayID, reason).Inc()
}

func (m *Metrics) Callback(gatewayID, kind, result string) {
	if m == nil {
		return
	}
	m.callbacksTotal.WithLabelValues(gatewayID, kind, result).Inc()
}

func (m *Metrics) SignatureFailure(gatewayID string) {
	if m == nil {
		return
	}
	m.signatureFailures.WithLabelValues(gatewayID).Inc()
}

func (m *Metrics) PaymentRecorded(gatewayID, currency, mode string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(gatewayID, currency, mode).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
